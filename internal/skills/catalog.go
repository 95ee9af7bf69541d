// Package skills matches resume text against static technical and soft-skill
// keyword tables.
package skills

import (
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// Category is one named group of technical keywords
type Category struct {
	Key      string
	Keywords []string
}

// Label is the display name of the category, e.g. "Programming Languages".
func (c Category) Label() string {
	return types.TitleCase(strings.ReplaceAll(c.Key, "_", " "))
}

var technicalCategories = []Category{
	{Key: "programming_languages", Keywords: []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "php",
		"ruby", "go", "rust", "swift", "kotlin", "scala", "r", "matlab",
		"perl", "shell", "bash", "powershell", "dart", "objective-c",
	}},
	{Key: "web_frameworks", Keywords: []string{
		"react", "angular", "vue", "svelte", "next.js", "nuxt", "gatsby",
		"node.js", "express", "django", "flask", "fastapi", "spring",
		"spring boot", "laravel", "rails", "asp.net", "blazor",
	}},
	{Key: "mobile", Keywords: []string{
		"react native", "flutter", "android", "ios", "xamarin", "ionic",
		"swiftui", "jetpack compose",
	}},
	{Key: "databases", Keywords: []string{
		"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
		"cassandra", "dynamodb", "oracle", "sql server", "sqlite", "firebase",
		"mariadb", "neo4j", "couchdb",
	}},
	{Key: "cloud_devops", Keywords: []string{
		"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "gitlab ci",
		"github actions", "terraform", "ansible", "circleci", "travis ci",
		"heroku", "netlify", "vercel", "cloud functions", "lambda",
	}},
	{Key: "data_ai_ml", Keywords: []string{
		"machine learning", "deep learning", "data science", "ai",
		"tensorflow", "pytorch", "keras", "scikit-learn", "pandas",
		"numpy", "opencv", "nlp", "computer vision", "data analysis",
		"big data", "hadoop", "spark", "tableau", "power bi",
	}},
	{Key: "tools_technologies", Keywords: []string{
		"git", "github", "gitlab", "bitbucket", "jira", "confluence",
		"agile", "scrum", "kanban", "ci/cd", "microservices", "rest api",
		"graphql", "websocket", "oauth", "jwt", "unit testing", "jest",
		"pytest", "junit", "selenium", "cypress",
	}},
	{Key: "frontend", Keywords: []string{
		"html", "html5", "css", "css3", "sass", "scss", "less", "bootstrap",
		"tailwind", "material ui", "styled components", "webpack", "vite",
		"babel", "responsive design", "ui/ux",
	}},
}

var softSkills = []string{
	"leadership", "teamwork", "communication", "problem solving",
	"critical thinking", "creativity", "adaptability", "time management",
	"collaboration", "presentation", "analytical", "detail-oriented",
	"initiative", "mentoring", "conflict resolution", "negotiation",
	"project management", "stakeholder management", "agile mindset",
	"customer focus", "innovation", "strategic thinking",
}

// Categories returns a copy of the technical keyword table in match order.
func Categories() []Category {
	out := make([]Category, len(technicalCategories))
	for i, c := range technicalCategories {
		out[i] = Category{Key: c.Key, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// SoftSkills returns a copy of the soft-skill list.
func SoftSkills() []string {
	return append([]string(nil), softSkills...)
}

// CatalogStats summarizes the keyword tables
type CatalogStats struct {
	Categories        int `json:"categories"`
	TechnicalKeywords int `json:"technical_keywords"`
	SoftSkills        int `json:"soft_skills"`
}

// Catalog reports the sizes of the keyword tables.
func Catalog() CatalogStats {
	stats := CatalogStats{
		Categories: len(technicalCategories),
		SoftSkills: len(softSkills),
	}
	for _, c := range technicalCategories {
		stats.TechnicalKeywords += len(c.Keywords)
	}
	return stats
}
