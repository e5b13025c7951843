package models

import "time"

// Category groups templates for navigation and reporting.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"          validate:"required,max=100"`
	Code         string    `json:"code,omitempty" validate:"omitempty,max=50"`
	Description  string    `json:"description,omitempty"`
	IconClass    string    `json:"icon_class,omitempty"`
	Color        string    `json:"color,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SelectItem is a value/text pair used by select lists.
type SelectItem struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}
