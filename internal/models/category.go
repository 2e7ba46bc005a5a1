package models

// CategoryRule maps keywords to a canonical category. A rule does not apply
// when any of its Exclude keywords is present as well.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

// CategoriesConfig is the layout of categories.yaml.
type CategoriesConfig struct {
	Categories []CategoryRule `yaml:"categories"`
}
