package models

import (
	"strings"
	"time"
)

// PublishStatus is the lifecycle state of a form template.
type PublishStatus string

const (
	PublishStatusDraft      PublishStatus = "Draft"
	PublishStatusPublished  PublishStatus = "Published"
	PublishStatusArchived   PublishStatus = "Archived"
	PublishStatusDeprecated PublishStatus = "Deprecated"
)

// TemplateType is the reporting cadence a template is designed for.
type TemplateType string

const (
	TemplateTypeDaily     TemplateType = "Daily"
	TemplateTypeWeekly    TemplateType = "Weekly"
	TemplateTypeMonthly   TemplateType = "Monthly"
	TemplateTypeQuarterly TemplateType = "Quarterly"
	TemplateTypeAnnual    TemplateType = "Annual"
)

// SubmissionMode controls who creates submissions for a template.
type SubmissionMode string

const (
	// SubmissionModeIndividual lets each assigned user create their own submission.
	SubmissionModeIndividual SubmissionMode = "Individual"
	// SubmissionModeCollaborative creates submissions through the workflow only.
	SubmissionModeCollaborative SubmissionMode = "Collaborative"
)

// LayoutType is how an item is laid out inside its section.
type LayoutType string

const (
	LayoutSingle LayoutType = "Single"
	LayoutMatrix LayoutType = "Matrix"
	LayoutGrid   LayoutType = "Grid"
	LayoutInline LayoutType = "Inline"
)

// FormTemplate is a versioned form definition.
type FormTemplate struct {
	ID                   string         `json:"id"`
	CategoryID           string         `json:"category_id"                validate:"required"`
	TemplateName         string         `json:"template_name"              validate:"required,max=200"`
	TemplateCode         string         `json:"template_code"`
	Description          string         `json:"description,omitempty"`
	TemplateType         TemplateType   `json:"template_type"              validate:"required,oneof=Daily Weekly Monthly Quarterly Annual"`
	Version              int            `json:"version"`
	IsActive             bool           `json:"is_active"`
	RequiresApproval     bool           `json:"requires_approval"`
	WorkflowID           string         `json:"workflow_id,omitempty"`
	PublishStatus        PublishStatus  `json:"publish_status"`
	PublishedDate        *time.Time     `json:"published_date,omitempty"`
	PublishedBy          string         `json:"published_by,omitempty"`
	ArchivedDate         *time.Time     `json:"archived_date,omitempty"`
	ArchivedBy           string         `json:"archived_by,omitempty"`
	ArchivedReason       string         `json:"archived_reason,omitempty"`
	SubmissionMode       SubmissionMode `json:"submission_mode"`
	AllowAnonymousAccess bool           `json:"allow_anonymous_access"`
	Sections             []*Section     `json:"sections"`
	CreatedBy            string         `json:"created_by,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	ModifiedBy           string         `json:"modified_by,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Section groups items of a template.
type Section struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"                  validate:"required"`
	Description          string  `json:"description,omitempty"`
	DisplayOrder         int     `json:"display_order"`
	IsCollapsible        bool    `json:"is_collapsible"`
	IsCollapsedByDefault bool    `json:"is_collapsed_by_default"`
	IconClass            string  `json:"icon_class,omitempty"`
	ColumnLayout         int     `json:"column_layout,omitempty"`
	Weight               float64 `json:"weight"`
	Items                []*Item `json:"items"`
}

// Item is a single field of a template.
type Item struct {
	ID               string               `json:"id"`
	ItemCode         string               `json:"item_code,omitempty"`
	ItemName         string               `json:"item_name"                   validate:"required"`
	Description      string               `json:"description,omitempty"`
	DisplayOrder     int                  `json:"display_order"`
	DataType         string               `json:"data_type"                   validate:"required"`
	IsRequired       bool                 `json:"is_required"`
	DefaultValue     string               `json:"default_value,omitempty"`
	Placeholder      string               `json:"placeholder,omitempty"`
	HelpText         string               `json:"help_text,omitempty"`
	Prefix           string               `json:"prefix,omitempty"`
	Suffix           string               `json:"suffix,omitempty"`
	ConditionalLogic string               `json:"conditional_logic,omitempty"`
	LayoutType       LayoutType           `json:"layout_type,omitempty"`
	MatrixGroupID    string               `json:"matrix_group_id,omitempty"`
	MatrixRowLabel   string               `json:"matrix_row_label,omitempty"`
	Version          int                  `json:"version"`
	IsActive         bool                 `json:"is_active"`
	Weight           float64              `json:"weight"`
	Options          []*Option            `json:"options,omitempty"`
	Configurations   []*ItemConfiguration `json:"configurations,omitempty"`
	Validations      []*ItemValidation    `json:"validations,omitempty"`
}

// Config returns the configuration value for key, matched case-insensitively.
func (i *Item) Config(key string) (string, bool) {
	for _, c := range i.Configurations {
		if strings.EqualFold(c.Key, key) {
			return c.Value, true
		}
	}

	return "", false
}

// Option is a selectable choice of an item.
type Option struct {
	ID             string   `json:"id"`
	Value          string   `json:"value"                      validate:"required"`
	Label          string   `json:"label"                      validate:"required"`
	DisplayOrder   int      `json:"display_order"`
	IsDefault      bool     `json:"is_default"`
	IsActive       bool     `json:"is_active"`
	ParentOptionID string   `json:"parent_option_id,omitempty"`
	ScoreValue     *float64 `json:"score_value,omitempty"`
	ScoreWeight    *float64 `json:"score_weight,omitempty"`
}

// ItemConfiguration is a key/value setting of an item, e.g. "minvalue" or "allowedfiletypes".
type ItemConfiguration struct {
	Key   string `json:"key"   validate:"required"`
	Value string `json:"value"`
}

// ItemValidation is a validation rule applied to an item's response.
type ItemValidation struct {
	ID              string   `json:"id"`
	ValidationType  string   `json:"validation_type"          validate:"required"`
	MinValue        *float64 `json:"min_value,omitempty"`
	MaxValue        *float64 `json:"max_value,omitempty"`
	MinLength       *int     `json:"min_length,omitempty"`
	MaxLength       *int     `json:"max_length,omitempty"`
	RegexPattern    string   `json:"regex_pattern,omitempty"`
	ValidationOrder int      `json:"validation_order"`
	ErrorMessage    string   `json:"error_message,omitempty"`
	Severity        string   `json:"severity,omitempty"`
	IsActive        bool     `json:"is_active"`
}

// FindItem returns the item with the given ID and its section.
func (t *FormTemplate) FindItem(itemID string) (*Section, *Item) {
	for _, section := range t.Sections {
		for _, item := range section.Items {
			if item.ID == itemID {
				return section, item
			}
		}
	}

	return nil, nil
}

// FindSection returns the section with the given ID.
func (t *FormTemplate) FindSection(sectionID string) *Section {
	for _, section := range t.Sections {
		if section.ID == sectionID {
			return section
		}
	}

	return nil
}

// Items returns every item of the template in section order.
func (t *FormTemplate) Items() []*Item {
	items := make([]*Item, 0)
	for _, section := range t.Sections {
		items = append(items, section.Items...)
	}

	return items
}
