package models

// Project represents a portfolio project. ID is the URL slug of its detail
// page and must be unique across the catalog.
type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Category     string   `json:"category" yaml:"category"`
	Tags         []string `json:"tags" yaml:"tags"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Images       []string `json:"images,omitempty" yaml:"images"`
	GitHubURL    string   `json:"github_url,omitempty" yaml:"github_url"`
	LiveURL      string   `json:"live_url,omitempty" yaml:"live_url"`
	Year         int      `json:"year" yaml:"year"`
	Featured     bool     `json:"featured" yaml:"featured"`
	Completed    bool     `json:"completed" yaml:"completed"`
	Challenges   []string `json:"challenges,omitempty" yaml:"challenges"`
	Solutions    []string `json:"solutions,omitempty" yaml:"solutions"`
	Results      []string `json:"results,omitempty" yaml:"results"`
}
