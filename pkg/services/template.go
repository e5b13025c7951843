package services

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const (
	templateCodePrefix    = "TPL_"
	maxTemplateCodeLength = 50
	maxCodeSuffix         = 999
)

var (
	nonCodeCharacters  = regexp.MustCompile(`[^A-Z0-9]+`)
	templateCodeFormat = regexp.MustCompile(`^TPL_[A-Z0-9_]+$`)
	versionSuffix      = regexp.MustCompile(`_V\d+$`)
)

type Template struct {
	persistence persistence.Persistence
}

func NewTemplate(persistence persistence.Persistence) *Template {
	return &Template{persistence: persistence}
}

// GenerateCode derives a TPL_ code from a template name without checking uniqueness.
func GenerateCode(name string) string {
	if strings.TrimSpace(name) == "" {
		return templateCodePrefix + "UNNAMED"
	}

	sanitized := nonCodeCharacters.ReplaceAllString(strings.ToUpper(name), "_")
	code := templateCodePrefix + strings.Trim(sanitized, "_")

	if len(code) > maxTemplateCodeLength {
		code = code[:maxTemplateCodeLength]
	}

	return strings.TrimRight(code, "_")
}

// IsValidCodeFormat reports whether code looks like TPL_UPPERCASE_LETTERS_NUMBERS and fits the length limit.
func IsValidCodeFormat(code string) bool {
	return len(code) <= maxTemplateCodeLength && templateCodeFormat.MatchString(code)
}

// GenerateUniqueCode derives a code from name, appending _2, _3 ... when another template holds it.
func (t *Template) GenerateUniqueCode(ctx context.Context, name, excludeID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewValidationError("GenerateUniqueCode", "NAME_REQUIRED", "template name cannot be empty", ErrNameRequired)
	}

	return t.uniqueCode(ctx, GenerateCode(name), excludeID)
}

// CodeExists reports whether another template than excludeID uses code.
func (t *Template) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, nil
	}

	existing, err := t.persistence.TemplateRepository().GetByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to look up template code: %w", err)
	}

	return existing != nil && existing.ID != excludeID, nil
}

func (t *Template) uniqueCode(ctx context.Context, baseCode, excludeID string) (string, error) {
	exists, err := t.CodeExists(ctx, baseCode, excludeID)
	if err != nil {
		return "", err
	}

	if !exists {
		return baseCode, nil
	}

	for suffix := 2; suffix <= maxCodeSuffix; suffix++ {
		suffixText := fmt.Sprintf("_%d", suffix)
		candidate := baseCode[:min(len(baseCode), maxTemplateCodeLength-len(suffixText))] + suffixText

		exists, err = t.CodeExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}

		if !exists {
			return candidate, nil
		}
	}

	return "", newConflictError("GenerateUniqueCode",
		fmt.Sprintf("could not generate a unique code from '%s'", baseCode), ErrDuplicateCode)
}

func (t *Template) Get(ctx context.Context, id string) (*models.FormTemplate, error) {
	template, err := t.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

func (t *Template) GetByCode(ctx context.Context, code string) (*models.FormTemplate, error) {
	template, err := t.persistence.TemplateRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

// ListTemplatesRequest contains options for listing templates.
type ListTemplatesRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	CategoryID    string
	PublishStatus *models.PublishStatus
	TemplateType  *models.TemplateType
	Search        string

	// Sorting
	SortBy    string
	SortOrder string
}

// List retrieves templates with filtering, sorting, and pagination.
func (t *Template) List(ctx context.Context, req ListTemplatesRequest) (*persistence.TemplateListResult, error) {
	err := validateListTemplatesRequest(&req)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	result, err := t.persistence.TemplateRepository().ListTemplates(ctx, persistence.ListTemplatesOptions{
		Limit:         req.Limit,
		Offset:        req.Offset,
		CategoryID:    req.CategoryID,
		PublishStatus: req.PublishStatus,
		TemplateType:  req.TemplateType,
		Search:        req.Search,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return result, nil
}

func validateListTemplatesRequest(req *ListTemplatesRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	if !persistence.TemplateSortFields[req.SortBy] {
		return NewValidationError(
			"validateListTemplatesRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: created_at, updated_at, name", req.SortBy),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListTemplatesRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.PublishStatus != nil && !slices.Contains(publishStatuses, *req.PublishStatus) {
		return NewValidationError("validateListTemplatesRequest", "INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *req.PublishStatus), ErrInvalidRequest)
	}

	return nil
}

var publishStatuses = []models.PublishStatus{
	models.PublishStatusDraft,
	models.PublishStatusPublished,
	models.PublishStatusArchived,
	models.PublishStatusDeprecated,
}

var templateTypes = []models.TemplateType{
	models.TemplateTypeDaily,
	models.TemplateTypeWeekly,
	models.TemplateTypeMonthly,
	models.TemplateTypeQuarterly,
	models.TemplateTypeAnnual,
}

// Create stores a new Draft template at version 1, generating its code when missing.
// RequiresApproval is taken as given; API requests default it to true.
func (t *Template) Create(ctx context.Context, template *models.FormTemplate, userID string) (*models.FormTemplate, error) {
	template.TemplateName = strings.TrimSpace(template.TemplateName)
	if template.TemplateName == "" {
		return nil, NewValidationError("CreateTemplate", "NAME_REQUIRED", "template name is required", ErrNameRequired)
	}

	err := t.checkReferences(ctx, template)
	if err != nil {
		return nil, err
	}

	if template.TemplateCode == "" {
		template.TemplateCode, err = t.GenerateUniqueCode(ctx, template.TemplateName, "")
		if err != nil {
			return nil, err
		}
	} else {
		err = t.checkCode(ctx, template.TemplateCode, "")
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	template.ID = ""
	template.Version = 1
	template.PublishStatus = models.PublishStatusDraft
	template.IsActive = true
	template.CreatedBy = userID
	template.CreatedAt = now
	template.ModifiedBy = userID
	template.UpdatedAt = now

	if template.SubmissionMode == "" {
		template.SubmissionMode = models.SubmissionModeIndividual
	}

	if template.Sections == nil {
		template.Sections = []*models.Section{}
	}

	err = t.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

// TemplateUpdate holds the fields of a partial template update. Nil fields are left untouched.
type TemplateUpdate struct {
	TemplateName         *string
	TemplateCode         *string
	Description          *string
	CategoryID           *string
	TemplateType         *models.TemplateType
	RequiresApproval     *bool
	WorkflowID           *string
	SubmissionMode       *models.SubmissionMode
	AllowAnonymousAccess *bool
	IsActive             *bool
}

// Update applies a partial update to a Draft template.
func (t *Template) Update(ctx context.Context, id string, update TemplateUpdate, userID string) (*models.FormTemplate, error) {
	template, err := t.draft(ctx, "UpdateTemplate", id)
	if err != nil {
		return nil, err
	}

	if update.TemplateName != nil {
		name := strings.TrimSpace(*update.TemplateName)
		if name == "" {
			return nil, NewValidationError("UpdateTemplate", "NAME_REQUIRED", "template name is required", ErrNameRequired)
		}

		template.TemplateName = name
	}

	if update.TemplateCode != nil && *update.TemplateCode != template.TemplateCode {
		err = t.checkCode(ctx, *update.TemplateCode, id)
		if err != nil {
			return nil, err
		}

		template.TemplateCode = *update.TemplateCode
	}

	if update.Description != nil {
		template.Description = *update.Description
	}

	if update.CategoryID != nil {
		template.CategoryID = *update.CategoryID
	}

	if update.TemplateType != nil {
		template.TemplateType = *update.TemplateType
	}

	if update.RequiresApproval != nil {
		template.RequiresApproval = *update.RequiresApproval
	}

	if update.WorkflowID != nil {
		template.WorkflowID = *update.WorkflowID
	}

	if update.SubmissionMode != nil {
		template.SubmissionMode = *update.SubmissionMode
	}

	if update.AllowAnonymousAccess != nil {
		template.AllowAnonymousAccess = *update.AllowAnonymousAccess
	}

	if update.IsActive != nil {
		template.IsActive = *update.IsActive
	}

	err = t.checkReferences(ctx, template)
	if err != nil {
		return nil, err
	}

	return t.save(ctx, "update", template, userID)
}

// UpdateStructure replaces the sections and items of a Draft template.
func (t *Template) UpdateStructure(ctx context.Context, id string, sections []*models.Section, userID string) (*models.FormTemplate, error) {
	template, err := t.draft(ctx, "UpdateStructure", id)
	if err != nil {
		return nil, err
	}

	for sectionIndex, section := range sections {
		if strings.TrimSpace(section.Name) == "" {
			return nil, NewValidationError("UpdateStructure", "SECTION_NAME_REQUIRED",
				fmt.Sprintf("section %d needs a name", sectionIndex+1), ErrNameRequired)
		}

		if section.ID == "" {
			section.ID = newUUID()
		}

		if section.DisplayOrder == 0 {
			section.DisplayOrder = sectionIndex + 1
		}

		if section.Weight == 0 {
			section.Weight = 1.0
		}

		if section.Items == nil {
			section.Items = []*models.Item{}
		}

		for itemIndex, item := range section.Items {
			err = prepareItem(item, itemIndex)
			if err != nil {
				return nil, err
			}
		}
	}

	template.Sections = sections

	return t.save(ctx, "update structure of", template, userID)
}

func prepareItem(item *models.Item, index int) error {
	if strings.TrimSpace(item.ItemName) == "" {
		return NewValidationError("UpdateStructure", "ITEM_NAME_REQUIRED", "every item needs a name", ErrNameRequired)
	}

	err := ValidateConditionalLogic(item.ConditionalLogic)
	if err != nil {
		return fmt.Errorf("item %s: %w", item.ItemName, err)
	}

	if item.ID == "" {
		item.ID = newUUID()
	}

	if item.DisplayOrder == 0 {
		item.DisplayOrder = index + 1
	}

	if item.Weight == 0 {
		item.Weight = 1.0
	}

	if item.Version == 0 {
		item.Version = 1
	}

	if item.LayoutType == "" {
		item.LayoutType = models.LayoutSingle
	}

	for optionIndex, option := range item.Options {
		if option.ID == "" {
			option.ID = newUUID()
		}

		if option.DisplayOrder == 0 {
			option.DisplayOrder = optionIndex + 1
		}
	}

	for _, validation := range item.Validations {
		if validation.ID == "" {
			validation.ID = newUUID()
		}
	}

	return nil
}

// Publish makes a complete Draft template available for submissions.
func (t *Template) Publish(ctx context.Context, id, userID string) (*models.FormTemplate, error) {
	template, err := t.draft(ctx, "PublishTemplate", id)
	if err != nil {
		return nil, err
	}

	if !hasCompleteStructure(template) {
		return nil, NewValidationError("PublishTemplate", "TEMPLATE_INCOMPLETE",
			"template needs at least one section and every section needs at least one field", ErrTemplateIncomplete)
	}

	now := time.Now().UTC()
	template.PublishStatus = models.PublishStatusPublished
	template.PublishedDate = &now
	template.PublishedBy = userID

	return t.save(ctx, "publish", template, userID)
}

// Archive retires a Published template.
func (t *Template) Archive(ctx context.Context, id, userID, reason string) (*models.FormTemplate, error) {
	template, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if template.PublishStatus != models.PublishStatusPublished {
		return nil, newConflictError("ArchiveTemplate",
			fmt.Sprintf("cannot archive a template with status '%s'", template.PublishStatus), ErrTemplateNotPublished)
	}

	now := time.Now().UTC()
	template.PublishStatus = models.PublishStatusArchived
	template.ArchivedDate = &now
	template.ArchivedBy = userID
	template.ArchivedReason = strings.TrimSpace(reason)

	return t.save(ctx, "archive", template, userID)
}

// Delete removes a Draft template without submissions, together with its assignments and rules.
func (t *Template) Delete(ctx context.Context, id string) error {
	_, err := t.draft(ctx, "DeleteTemplate", id)
	if err != nil {
		return err
	}

	submissions, err := t.persistence.SubmissionRepository().Find(ctx, persistence.SubmissionFilter{TemplateID: id})
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if len(submissions) > 0 {
		return newConflictError("DeleteTemplate",
			fmt.Sprintf("template has %d submission(s)", len(submissions)), ErrTemplateHasSubmissions)
	}

	assignments, err := t.persistence.AssignmentRepository().GetByTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}

	for _, assignment := range assignments {
		err = t.persistence.AssignmentRepository().Delete(ctx, assignment.ID)
		if err != nil {
			return fmt.Errorf("failed to delete assignment: %w", err)
		}
	}

	rules, err := t.persistence.SubmissionRuleRepository().GetByTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list submission rules: %w", err)
	}

	for _, rule := range rules {
		err = t.persistence.SubmissionRuleRepository().Delete(ctx, rule.ID)
		if err != nil {
			return fmt.Errorf("failed to delete submission rule: %w", err)
		}
	}

	err = t.persistence.TemplateRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	return nil
}

// BuilderStep is one stage of building a template.
type BuilderStep string

const (
	StepTemplateSetup BuilderStep = "TemplateSetup"
	StepFormBuilder   BuilderStep = "FormBuilder"
	StepReviewPublish BuilderStep = "ReviewPublish"
)

// BuilderStepStatus is the state of a builder step.
type BuilderStepStatus string

const (
	BuilderStepCompleted BuilderStepStatus = "Completed"
	BuilderStepActive    BuilderStepStatus = "Active"
	BuilderStepPending   BuilderStepStatus = "Pending"
)

type BuilderStepInfo struct {
	Number    int               `json:"number"`
	Step      BuilderStep       `json:"step"`
	Status    BuilderStepStatus `json:"status"`
	Completed bool              `json:"completed"`
}

// TemplateProgress tells a builder where to resume work on a template.
type TemplateProgress struct {
	TemplateID        string               `json:"template_id"`
	TemplateName      string               `json:"template_name"`
	TemplateCode      string               `json:"template_code"`
	PublishStatus     models.PublishStatus `json:"publish_status"`
	CurrentStep       int                  `json:"current_step"`
	CompletionPercent int                  `json:"completion_percent"`
	Steps             []BuilderStepInfo    `json:"steps"`
	LastModified      time.Time            `json:"last_modified"`
}

// AnalyzeProgress works out which builder step a template is at.
func AnalyzeProgress(template *models.FormTemplate) *TemplateProgress {
	setupDone := template.TemplateName != "" &&
		template.TemplateCode != "" &&
		template.CategoryID != "" &&
		template.TemplateType != ""
	builderDone := hasCompleteStructure(template)
	publishDone := template.PublishStatus == models.PublishStatusPublished

	done := []bool{setupDone, builderDone, publishDone}
	names := []BuilderStep{StepTemplateSetup, StepFormBuilder, StepReviewPublish}

	progress := &TemplateProgress{
		TemplateID:    template.ID,
		TemplateName:  template.TemplateName,
		TemplateCode:  template.TemplateCode,
		PublishStatus: template.PublishStatus,
		CurrentStep:   len(names),
		Steps:         make([]BuilderStepInfo, 0, len(names)),
		LastModified:  template.UpdatedAt,
	}

	completed := 0

	for index, name := range names {
		status := BuilderStepActive

		switch {
		case index > 0 && !done[index-1]:
			status = BuilderStepPending
		case done[index]:
			status = BuilderStepCompleted
		}

		if done[index] {
			completed++
		}

		progress.Steps = append(progress.Steps, BuilderStepInfo{
			Number:    index + 1,
			Step:      name,
			Status:    status,
			Completed: done[index],
		})
	}

	for index := range names {
		if !done[index] {
			progress.CurrentStep = index + 1

			break
		}
	}

	progress.CompletionPercent = completed * 100 / len(names)

	return progress
}

// Progress loads a template and analyzes its builder progress.
func (t *Template) Progress(ctx context.Context, id string) (*TemplateProgress, error) {
	template, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return AnalyzeProgress(template), nil
}

// CreateNewVersion copies a Published template into a new Draft version, assignments included.
func (t *Template) CreateNewVersion(ctx context.Context, templateID, userID string) (*models.FormTemplate, error) {
	source, err := t.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if source.PublishStatus != models.PublishStatusPublished {
		return nil, newConflictError("CreateNewVersion",
			fmt.Sprintf("cannot create a version from a template with status '%s'", source.PublishStatus),
			ErrTemplateNotPublished)
	}

	nextVersion := source.Version + 1
	baseCode := versionSuffix.ReplaceAllString(source.TemplateCode, "")
	suffix := fmt.Sprintf("_V%d", nextVersion)
	versionCode := baseCode[:min(len(baseCode), maxTemplateCodeLength-len(suffix))] + suffix

	code, err := t.uniqueCode(ctx, versionCode, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copied := &models.FormTemplate{
		CategoryID:           source.CategoryID,
		TemplateName:         source.TemplateName,
		TemplateCode:         code,
		Description:          source.Description,
		TemplateType:         source.TemplateType,
		Version:              nextVersion,
		IsActive:             true,
		RequiresApproval:     source.RequiresApproval,
		WorkflowID:           source.WorkflowID,
		PublishStatus:        models.PublishStatusDraft,
		SubmissionMode:       source.SubmissionMode,
		AllowAnonymousAccess: source.AllowAnonymousAccess,
		Sections:             copySections(source.Sections),
		CreatedBy:            userID,
		CreatedAt:            now,
		ModifiedBy:           userID,
		UpdatedAt:            now,
	}

	err = t.persistence.TemplateRepository().Save(ctx, copied)
	if err != nil {
		return nil, fmt.Errorf("failed to save new template version: %w", err)
	}

	assignments, err := t.persistence.AssignmentRepository().GetByTemplate(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	for _, assignment := range assignments {
		clone := *assignment
		clone.ID = ""
		clone.TemplateID = copied.ID
		clone.AssignedBy = userID
		clone.AssignedDate = now
		clone.CancelledBy = ""
		clone.CancelledDate = nil
		clone.CancelledReason = ""
		clone.Notes = fmt.Sprintf("Copied from v%d", source.Version)

		err = t.persistence.AssignmentRepository().Save(ctx, &clone)
		if err != nil {
			return nil, fmt.Errorf("failed to copy assignment: %w", err)
		}
	}

	return copied, nil
}

func copySections(sections []*models.Section) []*models.Section {
	copied := make([]*models.Section, 0, len(sections))

	for _, section := range sections {
		sectionCopy := *section
		sectionCopy.ID = newUUID()
		sectionCopy.Items = make([]*models.Item, 0, len(section.Items))

		for _, item := range section.Items {
			itemCopy := *item
			itemCopy.ID = newUUID()
			itemCopy.Version = 1
			itemCopy.Options = make([]*models.Option, 0, len(item.Options))
			itemCopy.Validations = make([]*models.ItemValidation, 0, len(item.Validations))
			itemCopy.Configurations = make([]*models.ItemConfiguration, 0, len(item.Configurations))

			for _, option := range item.Options {
				optionCopy := *option
				optionCopy.ID = newUUID()
				itemCopy.Options = append(itemCopy.Options, &optionCopy)
			}

			for _, validation := range item.Validations {
				validationCopy := *validation
				validationCopy.ID = newUUID()
				itemCopy.Validations = append(itemCopy.Validations, &validationCopy)
			}

			for _, configuration := range item.Configurations {
				configurationCopy := *configuration
				itemCopy.Configurations = append(itemCopy.Configurations, &configurationCopy)
			}

			sectionCopy.Items = append(sectionCopy.Items, &itemCopy)
		}

		copied = append(copied, &sectionCopy)
	}

	return copied
}

func hasCompleteStructure(template *models.FormTemplate) bool {
	if len(template.Sections) == 0 {
		return false
	}

	for _, section := range template.Sections {
		if len(section.Items) == 0 {
			return false
		}
	}

	return true
}

func (t *Template) draft(ctx context.Context, op, id string) (*models.FormTemplate, error) {
	template, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if template.PublishStatus != models.PublishStatusDraft {
		return nil, newConflictError(op,
			fmt.Sprintf("template is %s; only draft templates can be changed", template.PublishStatus), ErrTemplateNotDraft)
	}

	return template, nil
}

func (t *Template) checkCode(ctx context.Context, code, excludeID string) error {
	if !IsValidCodeFormat(code) {
		return NewValidationError("checkTemplateCode", "INVALID_CODE",
			fmt.Sprintf("invalid template code '%s', use TPL_UPPERCASE_LETTERS_NUMBERS", code), ErrInvalidTemplateCode)
	}

	exists, err := t.CodeExists(ctx, code, excludeID)
	if err != nil {
		return err
	}

	if exists {
		return newConflictError("checkTemplateCode",
			fmt.Sprintf("template code '%s' is already in use", code), ErrDuplicateCode)
	}

	return nil
}

func (t *Template) checkReferences(ctx context.Context, template *models.FormTemplate) error {
	if !slices.Contains(templateTypes, template.TemplateType) {
		return NewValidationError("checkTemplate", "INVALID_TYPE",
			fmt.Sprintf("invalid template type '%s'", template.TemplateType), ErrInvalidRequest)
	}

	if template.SubmissionMode != "" &&
		template.SubmissionMode != models.SubmissionModeIndividual &&
		template.SubmissionMode != models.SubmissionModeCollaborative {
		return NewValidationError("checkTemplate", "INVALID_SUBMISSION_MODE",
			fmt.Sprintf("invalid submission mode '%s'", template.SubmissionMode), ErrInvalidRequest)
	}

	category, err := t.persistence.CategoryRepository().GetByID(ctx, template.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}

	if category == nil {
		return ErrCategoryNotFound
	}

	if template.WorkflowID == "" {
		return nil
	}

	workflow, err := t.persistence.WorkflowRepository().GetByID(ctx, template.WorkflowID)
	if err != nil {
		return fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return ErrWorkflowNotFound
	}

	return nil
}

func (t *Template) save(ctx context.Context, verb string, template *models.FormTemplate, userID string) (*models.FormTemplate, error) {
	template.ModifiedBy = userID
	template.UpdatedAt = time.Now().UTC()

	err := t.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to %s template: %w", verb, err)
	}

	return template, nil
}
