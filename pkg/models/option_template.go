package models

import (
	"slices"
	"strings"
	"time"
)

// OptionTemplate is a reusable list of choices for dropdown, radio and checkbox items.
type OptionTemplate struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"                             validate:"required,max=100"`
	Code                 string                `json:"code"                             validate:"required,max=50"`
	Category             string                `json:"category"                         validate:"required"`
	SubCategory          string                `json:"sub_category,omitempty"`
	Description          string                `json:"description,omitempty"`
	UsageCount           int                   `json:"usage_count"`
	DisplayOrder         int                   `json:"display_order"`
	ApplicableFieldTypes []string              `json:"applicable_field_types,omitempty"`
	RecommendedFor       string                `json:"recommended_for,omitempty"`
	HasScoring           bool                  `json:"has_scoring"`
	ScoringType          string                `json:"scoring_type,omitempty"`
	IsSystemTemplate     bool                  `json:"is_system_template"`
	TenantID             string                `json:"tenant_id,omitempty"`
	IsActive             bool                  `json:"is_active"`
	Items                []*OptionTemplateItem `json:"items"`
	CreatedBy            string                `json:"created_by,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	ModifiedBy           string                `json:"modified_by,omitempty"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// OptionTemplateItem is one choice of an option template.
type OptionTemplateItem struct {
	ID           string   `json:"id"`
	Value        string   `json:"value"                 validate:"required"`
	Label        string   `json:"label"                 validate:"required"`
	DisplayOrder int      `json:"display_order"`
	ScoreValue   *float64 `json:"score_value,omitempty"`
	ScoreWeight  *float64 `json:"score_weight,omitempty"`
	IconClass    string   `json:"icon_class,omitempty"`
	ColorHint    string   `json:"color_hint,omitempty"`
	IsDefault    bool     `json:"is_default"`
}

// AppliesTo reports whether the option template can be used for the field type.
// An empty list applies to every type.
func (o *OptionTemplate) AppliesTo(fieldType string) bool {
	if len(o.ApplicableFieldTypes) == 0 {
		return true
	}

	return slices.ContainsFunc(o.ApplicableFieldTypes, func(t string) bool {
		return strings.EqualFold(t, fieldType)
	})
}
