package models

// Tool describes one tool tile in the catalog.
type Tool struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	Description   string `json:"description" mapstructure:"description"`
	Icon          string `json:"icon" mapstructure:"icon"`
	Href          string `json:"href" mapstructure:"href"`
	Color         string `json:"color" mapstructure:"color"`
	Category      string `json:"category" mapstructure:"category"`
	LoginRequired bool   `json:"loginRequired" mapstructure:"loginRequired"`
	Recommended   bool   `json:"recommended" mapstructure:"recommended"`
}

// ToolsConfig is the tools.json document.
type ToolsConfig struct {
	Tools      []Tool            `json:"tools" mapstructure:"tools"`
	Categories map[string]string `json:"categories" mapstructure:"categories"`
}

// ToolDetail pairs a tool with its tool-specific configuration document.
type ToolDetail struct {
	Tool   Tool           `json:"tool"`
	Config map[string]any `json:"config"`
}

// SocialLink is a footer link on the home page.
type SocialLink struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
	Icon string `json:"icon" mapstructure:"icon"`
}

// HomeConfig is the home.json document.
type HomeConfig struct {
	Hero struct {
		Title       string `json:"title" mapstructure:"title"`
		Subtitle    string `json:"subtitle" mapstructure:"subtitle"`
		Description string `json:"description" mapstructure:"description"`
	} `json:"hero" mapstructure:"hero"`
	Footer struct {
		Tagline     string       `json:"tagline" mapstructure:"tagline"`
		SocialLinks []SocialLink `json:"socialLinks" mapstructure:"socialLinks"`
	} `json:"footer" mapstructure:"footer"`
	SEO struct {
		Title       string   `json:"title" mapstructure:"title"`
		Description string   `json:"description" mapstructure:"description"`
		Keywords    []string `json:"keywords" mapstructure:"keywords"`
	} `json:"seo" mapstructure:"seo"`
}
