package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const assignmentDateLayout = "Jan 2, 2006"

// Assignment manages who may submit a template and when.
type Assignment struct {
	persistence persistence.Persistence
	directory   *Directory
	events      notifier
	now         func() time.Time
}

func NewAssignment(persistence persistence.Persistence, directory *Directory, publisher eventbus.EventPublisher, logger *slog.Logger) *Assignment {
	return &Assignment{
		persistence: persistence,
		directory:   directory,
		events:      notifier{publisher: publisher, logger: logger},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (a *Assignment) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := a.persistence.AssignmentRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}

	return assignment, nil
}

// All returns every assignment, newest first.
func (a *Assignment) All(ctx context.Context) ([]*models.Assignment, error) {
	assignments, err := a.persistence.AssignmentRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	sortAssignments(assignments)

	return assignments, nil
}

// ListByTemplate returns the assignments of a template, newest first.
func (a *Assignment) ListByTemplate(ctx context.Context, templateID string) ([]*models.Assignment, error) {
	assignments, err := a.persistence.AssignmentRepository().GetByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	sortAssignments(assignments)

	return assignments, nil
}

// Create validates and stores a new Active assignment.
func (a *Assignment) Create(ctx context.Context, assignment *models.Assignment, userID string) (*models.Assignment, error) {
	template, err := a.persistence.TemplateRepository().GetByID(ctx, assignment.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	if assignment.EffectiveFrom.IsZero() {
		assignment.EffectiveFrom = a.now()
	}

	err = validateAssignment("CreateAssignment", assignment)
	if err != nil {
		return nil, err
	}

	assignment.ID = ""
	assignment.Status = models.AssignmentStatusActive
	assignment.AssignedBy = userID
	assignment.AssignedDate = a.now()
	assignment.CancelledBy = ""
	assignment.CancelledDate = nil
	assignment.CancelledReason = ""

	return a.save(ctx, assignment)
}

// AssignmentUpdate holds the fields of a partial assignment update. Nil fields are left untouched.
type AssignmentUpdate struct {
	AssignmentType *models.AssignmentType
	TenantType     *string
	TenantGroupID  *string
	TenantID       *string
	RoleID         *string
	DepartmentID   *string
	UserGroupID    *string
	UserID         *string
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
	AllowAnonymous *bool
	Notes          *string
}

func (a *Assignment) Update(ctx context.Context, id string, update AssignmentUpdate) (*models.Assignment, error) {
	assignment, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIfPresent(&assignment.AssignmentType, update.AssignmentType)
	setIfPresent(&assignment.TenantType, update.TenantType)
	setIfPresent(&assignment.TenantGroupID, update.TenantGroupID)
	setIfPresent(&assignment.TenantID, update.TenantID)
	setIfPresent(&assignment.RoleID, update.RoleID)
	setIfPresent(&assignment.DepartmentID, update.DepartmentID)
	setIfPresent(&assignment.UserGroupID, update.UserGroupID)
	setIfPresent(&assignment.UserID, update.UserID)
	setIfPresent(&assignment.EffectiveFrom, update.EffectiveFrom)
	setIfPresent(&assignment.AllowAnonymous, update.AllowAnonymous)
	setIfPresent(&assignment.Notes, update.Notes)

	if update.EffectiveUntil != nil {
		until := *update.EffectiveUntil
		assignment.EffectiveUntil = &until
	}

	err = validateAssignment("UpdateAssignment", assignment)
	if err != nil {
		return nil, err
	}

	return a.save(ctx, assignment)
}

// Delete removes an assignment.
func (a *Assignment) Delete(ctx context.Context, id string) error {
	_, err := a.Get(ctx, id)
	if err != nil {
		return err
	}

	err = a.persistence.AssignmentRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	return nil
}

// Cancel revokes an assignment.
func (a *Assignment) Cancel(ctx context.Context, id, userID, reason string) (*models.Assignment, error) {
	assignment, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.now()
	assignment.Status = models.AssignmentStatusRevoked
	assignment.CancelledBy = userID
	assignment.CancelledDate = &now
	assignment.CancelledReason = reason

	return a.save(ctx, assignment)
}

// Extend moves the end of the effective window. A revoked assignment becomes active again.
func (a *Assignment) Extend(ctx context.Context, id string, until time.Time) (*models.Assignment, error) {
	if !until.After(a.now()) {
		return nil, NewValidationError("ExtendAssignment", "INVALID_EFFECTIVE_RANGE",
			"new effective until date must be in the future", ErrInvalidEffectiveRange)
	}

	assignment, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.EffectiveUntil = &until

	if assignment.Status == models.AssignmentStatusRevoked {
		assignment.Status = models.AssignmentStatusActive
		assignment.CancelledBy = ""
		assignment.CancelledDate = nil
		assignment.CancelledReason = ""
	}

	return a.save(ctx, assignment)
}

// Suspend pauses an assignment and records the reason in its notes.
func (a *Assignment) Suspend(ctx context.Context, id, reason string) (*models.Assignment, error) {
	assignment, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.Status = models.AssignmentStatusSuspended
	assignment.Notes = strings.TrimSpace(assignment.Notes + "\n[Suspended: " + reason + "]")

	return a.save(ctx, assignment)
}

// Reactivate turns a suspended assignment active again unless its window has passed.
func (a *Assignment) Reactivate(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if assignment.Status != models.AssignmentStatusSuspended {
		return nil, newConflictError("ReactivateAssignment", "only suspended assignments can be reactivated", ErrAssignmentNotSuspended)
	}

	if assignment.IsExpired(a.now()) {
		return nil, newConflictError("ReactivateAssignment", "cannot reactivate an expired assignment", ErrAssignmentExpired)
	}

	assignment.Status = models.AssignmentStatusActive

	return a.save(ctx, assignment)
}

// BulkExtend extends every listed assignment and returns how many were changed. Unknown IDs are skipped.
func (a *Assignment) BulkExtend(ctx context.Context, ids []string, until time.Time) (int, error) {
	count := 0

	for _, id := range ids {
		_, err := a.Extend(ctx, id, until)
		if IsNotFoundError(err) {
			continue
		}

		if err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

// BulkCancel revokes every listed assignment and returns how many were changed. Unknown IDs are skipped.
func (a *Assignment) BulkCancel(ctx context.Context, ids []string, userID, reason string) (int, error) {
	count := 0

	for _, id := range ids {
		_, err := a.Cancel(ctx, id, userID, reason)
		if IsNotFoundError(err) {
			continue
		}

		if err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

// ProcessExpired revokes active assignments whose window ended before now.
func (a *Assignment) ProcessExpired(ctx context.Context, now time.Time) (int, error) {
	assignments, err := a.persistence.AssignmentRepository().GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list assignments: %w", err)
	}

	count := 0

	for _, assignment := range assignments {
		if assignment.Status != models.AssignmentStatusActive || !assignment.IsExpired(now) {
			continue
		}

		assignment.Status = models.AssignmentStatusRevoked

		err = a.persistence.AssignmentRepository().Save(ctx, assignment)
		if err != nil {
			return count, fmt.Errorf("failed to expire assignment %s: %w", assignment.ID, err)
		}

		count++

		a.events.publish(ctx, assignment.TemplateID, events.AssignmentExpired{
			BaseEvent:      events.NewBaseEvent(events.AssignmentExpiredEvent, ""),
			AssignmentID:   assignment.ID,
			TemplateID:     assignment.TemplateID,
			EffectiveUntil: assignment.EffectiveUntil,
		})
	}

	return count, nil
}

// SubmissionCheck is the outcome of ValidateForSubmission.
type SubmissionCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ValidateForSubmission reports whether the assignment currently allows a submission.
func (a *Assignment) ValidateForSubmission(ctx context.Context, id string, now time.Time) (*SubmissionCheck, error) {
	assignment, err := a.persistence.AssignmentRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	switch {
	case assignment == nil:
		return &SubmissionCheck{Reason: "Assignment not found"}, nil
	case assignment.Status != models.AssignmentStatusActive:
		return &SubmissionCheck{Reason: "Assignment is not active"}, nil
	case assignment.EffectiveFrom.After(now):
		return &SubmissionCheck{Reason: "Assignment is not yet effective. Starts on " + assignment.EffectiveFrom.Format(assignmentDateLayout)}, nil
	case assignment.IsExpired(now):
		return &SubmissionCheck{Reason: "Assignment has expired on " + assignment.EffectiveUntil.Format(assignmentDateLayout)}, nil
	}

	return &SubmissionCheck{Allowed: true}, nil
}

// CheckUserAccess reports whether an effective assignment of the template matches the user.
func (a *Assignment) CheckUserAccess(ctx context.Context, templateID, userID string) (bool, error) {
	user, err := a.persistence.DirectoryRepository().UserByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return false, nil
	}

	assignments, err := a.effective(ctx, templateID)
	if err != nil {
		return false, err
	}

	return a.matchesAny(ctx, user, assignments)
}

// CanUserCreateSubmission reports whether the user may start a submission of the template.
// Collaborative templates only get submissions through their workflow.
func (a *Assignment) CanUserCreateSubmission(ctx context.Context, templateID, userID string) (bool, error) {
	template, err := a.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return false, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return false, ErrTemplateNotFound
	}

	if template.SubmissionMode == models.SubmissionModeCollaborative {
		return false, nil
	}

	if template.AllowAnonymousAccess {
		return true, nil
	}

	return a.CheckUserAccess(ctx, templateID, userID)
}

// UserAssignment is an effective assignment of a user together with their latest submission.
type UserAssignment struct {
	Assignment       *models.Assignment       `json:"assignment"`
	TemplateName     string                   `json:"template_name"`
	TemplateCode     string                   `json:"template_code"`
	HasSubmission    bool                     `json:"has_submission"`
	SubmissionID     string                   `json:"submission_id,omitempty"`
	SubmissionStatus *models.SubmissionStatus `json:"submission_status,omitempty"`
}

// UserAssignments returns the effective assignments matching the user.
func (a *Assignment) UserAssignments(ctx context.Context, userID string) ([]*UserAssignment, error) {
	user, err := a.directory.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	assignments, err := a.persistence.AssignmentRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	sortAssignments(assignments)

	now := a.now()
	seen := make(map[string]bool)
	result := make([]*UserAssignment, 0)

	for _, assignment := range assignments {
		if seen[assignment.TemplateID] || !assignment.IsEffective(now) {
			continue
		}

		matches, err := a.matches(ctx, user, assignment)
		if err != nil {
			return nil, err
		}

		if !matches {
			continue
		}

		template, err := a.persistence.TemplateRepository().GetByID(ctx, assignment.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to get template: %w", err)
		}

		if template == nil {
			continue
		}

		seen[assignment.TemplateID] = true

		entry := &UserAssignment{
			Assignment:   assignment,
			TemplateName: template.TemplateName,
			TemplateCode: template.TemplateCode,
		}

		submissions, err := a.persistence.SubmissionRepository().Find(ctx, persistence.SubmissionFilter{
			TemplateID:  assignment.TemplateID,
			SubmittedBy: userID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find submissions: %w", err)
		}

		if len(submissions) > 0 {
			latest := submissions[0]
			entry.HasSubmission = true
			entry.SubmissionID = latest.ID
			entry.SubmissionStatus = &latest.Status
		}

		result = append(result, entry)
	}

	return result, nil
}

// PendingAssignments returns the user's assignments without a submission or with only a draft.
func (a *Assignment) PendingAssignments(ctx context.Context, userID string) ([]*UserAssignment, error) {
	assignments, err := a.UserAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(assignments, func(entry *UserAssignment) bool {
		return entry.HasSubmission && *entry.SubmissionStatus != models.SubmissionDraft
	}), nil
}

// CoverageDetail describes one active assignment in a coverage report.
type CoverageDetail struct {
	AssignmentID       string                `json:"assignment_id"`
	AssignmentType     models.AssignmentType `json:"assignment_type"`
	TargetName         string                `json:"target_name"`
	EstimatedUserCount int                   `json:"estimated_user_count"`
	EffectiveFrom      time.Time             `json:"effective_from"`
	EffectiveUntil     *time.Time            `json:"effective_until,omitempty"`
}

// Coverage reports whether a template's assignments let the right people submit it.
type Coverage struct {
	SubmissionMode        models.SubmissionMode `json:"submission_mode"`
	ActiveAssignmentCount int                   `json:"active_assignment_count"`
	PotentialUserCount    int                   `json:"potential_user_count"`
	UserIDs               []string              `json:"user_ids"`
	Details               []*CoverageDetail     `json:"details"`
	Issues                []string              `json:"issues"`
	Warnings              []string              `json:"warnings"`
	IsSufficient          bool                  `json:"is_sufficient"`
}

// Coverage evaluates the active assignments of a template against its submission mode.
func (a *Assignment) Coverage(ctx context.Context, templateID string) (*Coverage, error) {
	template, err := a.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	assignments, err := a.effective(ctx, templateID)
	if err != nil {
		return nil, err
	}

	users, err := a.directory.Users(ctx)
	if err != nil {
		return nil, err
	}

	tenants, err := a.directory.Tenants(ctx)
	if err != nil {
		return nil, err
	}

	tenantsByID := make(map[string]*models.Tenant, len(tenants))
	for _, tenant := range tenants {
		tenantsByID[tenant.ID] = tenant
	}

	coverage := &Coverage{
		SubmissionMode:        template.SubmissionMode,
		ActiveAssignmentCount: len(assignments),
		UserIDs:               make([]string, 0),
		Details:               make([]*CoverageDetail, 0, len(assignments)),
		Issues:                make([]string, 0),
		Warnings:              make([]string, 0),
	}

	resolved := make(map[string]bool)

	for _, assignment := range assignments {
		userIDs := resolveAssignmentUsers(assignment, users, tenantsByID)
		for _, id := range userIDs {
			resolved[id] = true
		}

		coverage.Details = append(coverage.Details, &CoverageDetail{
			AssignmentID:       assignment.ID,
			AssignmentType:     assignment.AssignmentType,
			TargetName:         assignmentTargetName(assignment, tenantsByID),
			EstimatedUserCount: len(userIDs),
			EffectiveFrom:      assignment.EffectiveFrom,
			EffectiveUntil:     assignment.EffectiveUntil,
		})
		coverage.PotentialUserCount += len(userIDs)
	}

	for id := range resolved {
		coverage.UserIDs = append(coverage.UserIDs, id)
	}

	slices.Sort(coverage.UserIDs)

	if template.SubmissionMode == models.SubmissionModeCollaborative {
		if len(assignments) == 0 {
			coverage.Warnings = append(coverage.Warnings,
				"No assignments found. Users may not be able to view submissions unless workflow assignees provide viewing permissions")
		}

		coverage.IsSufficient = true

		return coverage, nil
	}

	switch {
	case len(assignments) == 0:
		coverage.Issues = append(coverage.Issues,
			"Individual mode requires at least one active assignment to control who can create submissions")
	case coverage.PotentialUserCount == 0:
		coverage.Issues = append(coverage.Issues, "Active assignments do not resolve to any users")
	}

	coverage.IsSufficient = len(coverage.Issues) == 0

	return coverage, nil
}

func (a *Assignment) HasSufficient(ctx context.Context, templateID string) (bool, error) {
	coverage, err := a.Coverage(ctx, templateID)
	if err != nil {
		return false, err
	}

	return coverage.IsSufficient, nil
}

// UsersWithAccess returns the users the assignments resolve to. Only Individual templates grant access by assignment.
func (a *Assignment) UsersWithAccess(ctx context.Context, templateID string) ([]string, error) {
	coverage, err := a.Coverage(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if coverage.SubmissionMode != models.SubmissionModeIndividual {
		return []string{}, nil
	}

	return coverage.UserIDs, nil
}

// AssignmentStatistics counts assignments by state and type.
type AssignmentStatistics struct {
	Total     int                           `json:"total"`
	Active    int                           `json:"active"`
	Suspended int                           `json:"suspended"`
	Revoked   int                           `json:"revoked"`
	Expired   int                           `json:"expired"`
	Effective int                           `json:"effective"`
	Anonymous int                           `json:"anonymous"`
	ByType    map[models.AssignmentType]int `json:"by_type"`
	ByStatus  map[string]int                `json:"by_status"`
}

// Statistics counts the assignments of a template, or of every template when templateID is empty.
func (a *Assignment) Statistics(ctx context.Context, templateID string) (*AssignmentStatistics, error) {
	var (
		assignments []*models.Assignment
		err         error
	)

	if templateID == "" {
		assignments, err = a.persistence.AssignmentRepository().GetAll(ctx)
	} else {
		assignments, err = a.persistence.AssignmentRepository().GetByTemplate(ctx, templateID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	now := a.now()
	stats := &AssignmentStatistics{
		Total:    len(assignments),
		ByType:   make(map[models.AssignmentType]int),
		ByStatus: make(map[string]int),
	}

	for _, assignment := range assignments {
		switch assignment.Status {
		case models.AssignmentStatusActive:
			stats.Active++
		case models.AssignmentStatusSuspended:
			stats.Suspended++
		case models.AssignmentStatusRevoked:
			stats.Revoked++
		}

		if assignment.IsExpired(now) {
			stats.Expired++
		}

		if assignment.IsEffective(now) {
			stats.Effective++
		}

		if assignment.AllowAnonymous {
			stats.Anonymous++
		}

		stats.ByType[assignment.AssignmentType]++
		stats.ByStatus[string(assignment.Status)]++
	}

	return stats, nil
}

// effective returns the assignments of a template that are active and inside their window.
func (a *Assignment) effective(ctx context.Context, templateID string) ([]*models.Assignment, error) {
	assignments, err := a.persistence.AssignmentRepository().GetByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	now := a.now()

	return slices.DeleteFunc(assignments, func(assignment *models.Assignment) bool {
		return !assignment.IsEffective(now)
	}), nil
}

func (a *Assignment) matchesAny(ctx context.Context, user *models.User, assignments []*models.Assignment) (bool, error) {
	for _, assignment := range assignments {
		matches, err := a.matches(ctx, user, assignment)
		if err != nil {
			return false, err
		}

		if matches {
			return true, nil
		}
	}

	return false, nil
}

func (a *Assignment) matches(ctx context.Context, user *models.User, assignment *models.Assignment) (bool, error) {
	switch assignment.AssignmentType {
	case models.AssignmentTenantType, models.AssignmentTenantGroup, models.AssignmentSpecificTenant:
		tenant, err := a.directory.tenantOf(ctx, user)
		if err != nil {
			return false, err
		}

		return userMatches(assignment, user, tenant), nil
	default:
		return userMatches(assignment, user, nil), nil
	}
}

// userMatches reports whether the assignment targets the user. tenant is the user's tenant, if any.
func userMatches(assignment *models.Assignment, user *models.User, tenant *models.Tenant) bool {
	switch assignment.AssignmentType {
	case models.AssignmentAll:
		return true
	case models.AssignmentTenantType:
		return tenant != nil && assignment.TenantType != "" && strings.EqualFold(tenant.Type, assignment.TenantType)
	case models.AssignmentTenantGroup:
		return tenant != nil && tenant.InGroup(assignment.TenantGroupID)
	case models.AssignmentSpecificTenant:
		return assignment.TenantID != "" && user.TenantID == assignment.TenantID
	case models.AssignmentRole:
		return user.HasRole(assignment.RoleID)
	case models.AssignmentDepartment:
		return assignment.DepartmentID != "" && user.DepartmentID == assignment.DepartmentID
	case models.AssignmentUserGroup:
		return user.InGroup(assignment.UserGroupID)
	case models.AssignmentSpecificUser:
		return assignment.UserID != "" && user.ID == assignment.UserID
	default:
		return false
	}
}

// resolveAssignmentUsers returns the active users an assignment targets.
func resolveAssignmentUsers(assignment *models.Assignment, users []*models.User, tenants map[string]*models.Tenant) []string {
	ids := make([]string, 0)

	for _, user := range users {
		if !user.IsActive {
			continue
		}

		if userMatches(assignment, user, tenants[user.TenantID]) {
			ids = append(ids, user.ID)
		}
	}

	return ids
}

func assignmentTargetName(assignment *models.Assignment, tenants map[string]*models.Tenant) string {
	switch assignment.AssignmentType {
	case models.AssignmentAll:
		return "All users"
	case models.AssignmentTenantType:
		return "Tenant type: " + assignment.TenantType
	case models.AssignmentTenantGroup:
		return "Tenant group: " + assignment.TenantGroupID
	case models.AssignmentSpecificTenant:
		if tenant, ok := tenants[assignment.TenantID]; ok {
			return "Tenant: " + tenant.Name
		}

		return "Tenant: " + assignment.TenantID
	case models.AssignmentRole:
		return "Role: " + assignment.RoleID
	case models.AssignmentDepartment:
		return "Department: " + assignment.DepartmentID
	case models.AssignmentUserGroup:
		return "User group: " + assignment.UserGroupID
	case models.AssignmentSpecificUser:
		return "User: " + assignment.UserID
	default:
		return string(assignment.AssignmentType)
	}
}

func validateAssignment(op string, assignment *models.Assignment) error {
	var target string

	switch assignment.AssignmentType {
	case models.AssignmentAll:
		target = "all"
	case models.AssignmentTenantType:
		target = assignment.TenantType
	case models.AssignmentTenantGroup:
		target = assignment.TenantGroupID
	case models.AssignmentSpecificTenant:
		target = assignment.TenantID
	case models.AssignmentRole:
		target = assignment.RoleID
	case models.AssignmentDepartment:
		target = assignment.DepartmentID
	case models.AssignmentUserGroup:
		target = assignment.UserGroupID
	case models.AssignmentSpecificUser:
		target = assignment.UserID
	default:
		return NewValidationError(op, "INVALID_ASSIGNMENT_TYPE",
			fmt.Sprintf("invalid assignment type '%s'", assignment.AssignmentType), ErrInvalidAssignment)
	}

	if strings.TrimSpace(target) == "" {
		return NewValidationError(op, "ASSIGNMENT_TARGET_REQUIRED",
			fmt.Sprintf("a target is required for %s assignments", assignment.AssignmentType), ErrInvalidAssignment)
	}

	if assignment.EffectiveUntil != nil && !assignment.EffectiveUntil.After(assignment.EffectiveFrom) {
		return NewValidationError(op, "INVALID_EFFECTIVE_RANGE",
			"effective until must be after effective from", ErrInvalidEffectiveRange)
	}

	return nil
}

func (a *Assignment) save(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	err := a.persistence.AssignmentRepository().Save(ctx, assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	return assignment, nil
}

func sortAssignments(assignments []*models.Assignment) {
	slices.SortStableFunc(assignments, func(x, y *models.Assignment) int {
		return y.AssignedDate.Compare(x.AssignedDate)
	})
}

func setIfPresent[T any](field *T, value *T) {
	if value != nil {
		*field = *value
	}
}
