package models

import (
	"time"
)

// Project is a showcase entry rendered on the home page.
type Project struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url" db:"url"`
	Icon        string    `json:"icon" db:"icon"`
	Color       string    `json:"color" db:"color"`
	Category    string    `json:"category" db:"category"`
	Featured    bool      `json:"featured" db:"featured"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateProjectRequest is the body of POST /api/config/projects.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Icon        string `json:"icon" validate:"required"`
	Color       string `json:"color" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Featured    bool   `json:"featured"`
}

// ProjectUpdate carries a partial update. Nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty" validate:"omitempty,url"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	Category    *string `json:"category,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u *ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.URL == nil && u.Icon == nil &&
		u.Color == nil && u.Category == nil && u.Featured == nil
}

// ProjectCategories maps category keys to display labels.
var ProjectCategories = map[string]string{
	"web-development":  "Web Development",
	"open-source":      "Open Source",
	"mobile-app":       "Mobile App",
	"desktop-app":      "Desktop App",
	"api":              "API & Backend",
	"data-science":     "Data Science",
	"machine-learning": "Machine Learning",
	"devops":           "DevOps",
	"security":         "Security",
	"blockchain":       "Blockchain",
	"iot":              "IoT",
	"game":             "Game Development",
	"design":           "Design",
	"other":            "Other",
}
