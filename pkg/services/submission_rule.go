package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const (
	dueTimeLayout    = "15:04"
	reminderLookback = 30
	maxMonthsScanned = 12
	maxYearsScanned  = 8
	monthsPerQuarter = 3
	hoursPerDay      = 24
)

var frequencies = []models.Frequency{
	models.FrequencyOnce,
	models.FrequencyDaily,
	models.FrequencyWeekly,
	models.FrequencyMonthly,
	models.FrequencyQuarterly,
	models.FrequencyAnnually,
}

var ruleStatuses = []models.RuleStatus{models.RuleStatusActive, models.RuleStatusInactive, models.RuleStatusDraft}

// SubmissionRule manages due-date policies of templates.
type SubmissionRule struct {
	persistence persistence.Persistence
}

func NewSubmissionRule(persistence persistence.Persistence) *SubmissionRule {
	return &SubmissionRule{persistence: persistence}
}

func (s *SubmissionRule) Get(ctx context.Context, id string) (*models.SubmissionRule, error) {
	rule, err := s.persistence.SubmissionRuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission rule: %w", err)
	}

	if rule == nil {
		return nil, ErrSubmissionRuleNotFound
	}

	return rule, nil
}

// ListByTemplate returns the rules of a template ordered by name.
func (s *SubmissionRule) ListByTemplate(ctx context.Context, templateID string) ([]*models.SubmissionRule, error) {
	rules, err := s.persistence.SubmissionRuleRepository().GetByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission rules: %w", err)
	}

	slices.SortStableFunc(rules, func(a, b *models.SubmissionRule) int {
		return strings.Compare(a.RuleName, b.RuleName)
	})

	return rules, nil
}

// Create stores a new rule. New rules are Active unless a status is given.
func (s *SubmissionRule) Create(ctx context.Context, rule *models.SubmissionRule, userID string) (*models.SubmissionRule, error) {
	ok, err := s.CanAddRuleToTemplate(ctx, rule.TemplateID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, newConflictError("CreateSubmissionRule", "rules cannot be added to an archived template", ErrTemplateArchived)
	}

	err = s.Validate(ctx, rule)
	if err != nil {
		return nil, err
	}

	rule.ID = ""
	rule.CreatedBy = userID
	rule.CreatedAt = time.Time{}

	if rule.Status == "" {
		rule.Status = models.RuleStatusActive
	}

	return s.save(ctx, rule, userID)
}

// Update replaces the editable fields of a rule.
func (s *SubmissionRule) Update(ctx context.Context, id string, changes *models.SubmissionRule, userID string) (*models.SubmissionRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.RuleName = changes.RuleName
	rule.Description = changes.Description
	rule.Frequency = changes.Frequency
	rule.DueDay = changes.DueDay
	rule.DueMonth = changes.DueMonth
	rule.DueTime = changes.DueTime
	rule.SpecificDueDate = changes.SpecificDueDate
	rule.CronExpression = changes.CronExpression
	rule.GracePeriodDays = changes.GracePeriodDays
	rule.AllowLateSubmission = changes.AllowLateSubmission
	rule.ReminderDaysBefore = changes.ReminderDaysBefore
	rule.SendReminders = changes.SendReminders

	if changes.Status != "" {
		rule.Status = changes.Status
	}

	err = s.Validate(ctx, rule)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, rule, userID)
}

func (s *SubmissionRule) Delete(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.persistence.SubmissionRuleRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission rule: %w", err)
	}

	return nil
}

// Toggle switches an Active rule to Inactive and any other rule to Active.
func (s *SubmissionRule) Toggle(ctx context.Context, id, userID string) (*models.SubmissionRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rule.Status == models.RuleStatusActive {
		rule.Status = models.RuleStatusInactive
	} else {
		rule.Status = models.RuleStatusActive
	}

	return s.save(ctx, rule, userID)
}

// CanAddRuleToTemplate reports whether the template exists and is not archived.
func (s *SubmissionRule) CanAddRuleToTemplate(ctx context.Context, templateID string) (bool, error) {
	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return false, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return false, ErrTemplateNotFound
	}

	return template.PublishStatus != models.PublishStatusArchived, nil
}

// Validate checks the rule's template and schedule fields.
func (s *SubmissionRule) Validate(ctx context.Context, rule *models.SubmissionRule) error {
	if strings.TrimSpace(rule.RuleName) == "" {
		return NewValidationError("ValidateSubmissionRule", "NAME_REQUIRED", "rule name is required", ErrNameRequired)
	}

	template, err := s.persistence.TemplateRepository().GetByID(ctx, rule.TemplateID)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return ErrTemplateNotFound
	}

	return ValidateSchedule(rule)
}

// ValidateSchedule checks the frequency-specific fields, the due time, the cron override and the reminder days.
func ValidateSchedule(rule *models.SubmissionRule) error {
	invalid := func(format string, args ...any) error {
		return NewValidationError("ValidateSchedule", "INVALID_SCHEDULE", fmt.Sprintf(format, args...), ErrInvalidSchedule)
	}

	if !slices.Contains(frequencies, rule.Frequency) {
		return invalid("unknown frequency '%s'", rule.Frequency)
	}

	switch rule.Frequency {
	case models.FrequencyWeekly:
		if rule.DueDay == nil || *rule.DueDay < 0 || *rule.DueDay > 6 {
			return invalid("weekly rules need a due day between 0 (Sunday) and 6 (Saturday)")
		}
	case models.FrequencyMonthly, models.FrequencyQuarterly:
		if !validDayOfMonth(rule.DueDay) {
			return invalid("%s rules need a due day between 1 and 31, or -1 for the last day", strings.ToLower(string(rule.Frequency)))
		}
	case models.FrequencyAnnually:
		if rule.DueDay == nil || rule.DueMonth == nil {
			return invalid("annual rules need a due day and a due month")
		}

		if !validDayOfMonth(rule.DueDay) {
			return invalid("annual rules need a due day between 1 and 31, or -1 for the last day")
		}

		if *rule.DueMonth < 1 || *rule.DueMonth > 12 {
			return invalid("due month must be between 1 and 12")
		}
	case models.FrequencyOnce:
		if rule.SpecificDueDate == nil {
			return invalid("one-time rules need a specific due date")
		}
	}

	if rule.DueTime != "" {
		_, err := time.Parse(dueTimeLayout, rule.DueTime)
		if err != nil {
			return invalid("due time '%s' must be formatted as HH:MM", rule.DueTime)
		}
	}

	if rule.CronExpression != "" {
		_, err := rule.CronSchedule()
		if err != nil {
			return invalid("invalid cron expression '%s': %v", rule.CronExpression, err)
		}
	}

	if rule.Status != "" && !slices.Contains(ruleStatuses, rule.Status) {
		return invalid("unknown rule status '%s'", rule.Status)
	}

	if rule.GracePeriodDays < 0 {
		return invalid("grace period cannot be negative")
	}

	_, err := ParseReminderDays(rule.ReminderDaysBefore)
	if err != nil {
		return invalid("%v", err)
	}

	return nil
}

func validDayOfMonth(day *int) bool {
	return day != nil && (*day == models.LastDayOfMonth || (*day >= 1 && *day <= 31))
}

// ParseReminderDays parses "7,3,1" into distinct positive days, largest first. Empty input yields nil.
func ParseReminderDays(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	days := make([]int, 0)

	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("reminder day '%s' is not a number", part)
		}

		if day > 0 && !slices.Contains(days, day) {
			days = append(days, day)
		}
	}

	slices.SortFunc(days, func(a, b int) int { return b - a })

	return days, nil
}

// CalculateNextDueDate returns the first due date after from, or nil when the rule has no computable schedule.
// A cron expression overrides the frequency.
func CalculateNextDueDate(rule *models.SubmissionRule, from time.Time) *time.Time {
	if rule.CronExpression != "" {
		schedule, err := rule.CronSchedule()
		if err != nil {
			return nil
		}

		next := schedule.Next(from)
		if next.IsZero() {
			return nil
		}

		return &next
	}

	dueTime := dueTimeOf(rule)

	var next time.Time

	var ok bool

	switch rule.Frequency {
	case models.FrequencyOnce:
		return rule.SpecificDueDate
	case models.FrequencyDaily:
		next = atTime(from.Year(), from.Month(), from.Day(), dueTime, from.Location())
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}

		ok = true
	case models.FrequencyWeekly:
		next, ok = nextWeekly(rule.DueDay, dueTime, from)
	case models.FrequencyMonthly:
		next, ok = nextMonthly(rule.DueDay, dueTime, from)
	case models.FrequencyQuarterly:
		next, ok = nextQuarterly(rule.DueDay, dueTime, from)
	case models.FrequencyAnnually:
		next, ok = nextAnnually(rule.DueDay, rule.DueMonth, dueTime, from)
	}

	if !ok {
		return nil
	}

	return &next
}

// NextDueDates returns up to count upcoming due dates after from.
func NextDueDates(rule *models.SubmissionRule, from time.Time, count int) []time.Time {
	dates := make([]time.Time, 0, count)

	for len(dates) < count {
		next := CalculateNextDueDate(rule, from)
		if next == nil || (len(dates) > 0 && !next.After(from)) {
			break
		}

		dates = append(dates, *next)
		from = *next
	}

	return dates
}

func dueTimeOf(rule *models.SubmissionRule) time.Duration {
	parsed, err := time.Parse(dueTimeLayout, rule.DueTime)
	if err != nil {
		return 0
	}

	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute
}

func atTime(year int, month time.Month, day int, dueTime time.Duration, loc *time.Location) time.Time {
	hour, minute := int(dueTime/time.Hour), int(dueTime%time.Hour/time.Minute)

	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

// dayInMonth resolves day (or LastDayOfMonth) in the given month. Days the month lacks are not moved.
func dayInMonth(year int, month time.Month, day int, dueTime time.Duration, loc *time.Location) (time.Time, bool) {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	if day == models.LastDayOfMonth {
		day = last
	}

	if day < 1 || day > last {
		return time.Time{}, false
	}

	return atTime(year, month, day, dueTime, loc), true
}

func nextWeekly(dueDay *int, dueTime time.Duration, from time.Time) (time.Time, bool) {
	if dueDay == nil || *dueDay < 0 || *dueDay > 6 {
		return time.Time{}, false
	}

	days := (*dueDay - int(from.Weekday()) + 7) % 7
	next := atTime(from.Year(), from.Month(), from.Day()+days, dueTime, from.Location())

	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}

	return next, true
}

// nextMonthly scans from's month and the following months for the first existing due day after from.
func nextMonthly(dueDay *int, dueTime time.Duration, from time.Time) (time.Time, bool) {
	if !validDayOfMonth(dueDay) {
		return time.Time{}, false
	}

	for offset := range maxMonthsScanned + 1 {
		candidate, ok := dayInMonth(from.Year(), from.Month()+time.Month(offset), *dueDay, dueTime, from.Location())
		if ok && candidate.After(from) {
			return candidate, true
		}
	}

	return time.Time{}, false
}

// nextQuarterly tries the remaining months of from's quarter, then falls back to the monthly scan from
// the start of the next quarter.
func nextQuarterly(dueDay *int, dueTime time.Duration, from time.Time) (time.Time, bool) {
	if !validDayOfMonth(dueDay) {
		return time.Time{}, false
	}

	quarterStart := time.Month((int(from.Month())-1)/monthsPerQuarter*monthsPerQuarter + 1)

	for month := from.Month(); month < quarterStart+monthsPerQuarter; month++ {
		candidate, ok := dayInMonth(from.Year(), month, *dueDay, dueTime, from.Location())
		if ok && candidate.After(from) {
			return candidate, true
		}
	}

	nextQuarter := time.Date(from.Year(), quarterStart+monthsPerQuarter, 1, 0, 0, 0, 0, from.Location())

	return nextMonthly(dueDay, dueTime, nextQuarter.Add(-time.Nanosecond))
}

func nextAnnually(dueDay, dueMonth *int, dueTime time.Duration, from time.Time) (time.Time, bool) {
	if dueMonth == nil || *dueMonth < 1 || *dueMonth > 12 || !validDayOfMonth(dueDay) {
		return time.Time{}, false
	}

	for offset := range maxYearsScanned + 1 {
		candidate, ok := dayInMonth(from.Year()+offset, time.Month(*dueMonth), *dueDay, dueTime, from.Location())
		if ok && candidate.After(from) {
			return candidate, true
		}
	}

	return time.Time{}, false
}

// ScheduleDescription renders the rule's schedule for people, e.g. "Monthly on 5th".
func ScheduleDescription(rule *models.SubmissionRule) string {
	if rule.CronExpression != "" {
		return "Custom schedule (" + rule.CronExpression + ")"
	}

	switch rule.Frequency {
	case "":
		return "No schedule"
	case models.FrequencyOnce:
		if rule.SpecificDueDate != nil {
			return "One-time on " + rule.SpecificDueDate.Format("2006-01-02")
		}

		return "One-time"
	case models.FrequencyDaily:
		return "Daily"
	case models.FrequencyWeekly:
		if rule.DueDay == nil || *rule.DueDay < 0 || *rule.DueDay > 6 {
			return "Weekly"
		}

		return "Weekly on " + time.Weekday(*rule.DueDay).String()
	case models.FrequencyMonthly, models.FrequencyQuarterly:
		if rule.DueDay == nil {
			return string(rule.Frequency)
		}

		if *rule.DueDay == models.LastDayOfMonth {
			return string(rule.Frequency) + " on last day"
		}

		return fmt.Sprintf("%s on %s", rule.Frequency, ordinal(*rule.DueDay))
	case models.FrequencyAnnually:
		if rule.DueDay == nil || rule.DueMonth == nil || *rule.DueMonth < 1 || *rule.DueMonth > 12 {
			return "Annually"
		}

		month := time.Month(*rule.DueMonth).String()
		if *rule.DueDay == models.LastDayOfMonth {
			return "Annually on last day of " + month
		}

		return fmt.Sprintf("Annually on %s %s", month, ordinal(*rule.DueDay))
	default:
		return string(rule.Frequency)
	}
}

func ordinal(n int) string {
	suffix := "th"

	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}

	return strconv.Itoa(n) + suffix
}

// SubmissionTiming is the verdict on when a submission arrived relative to its rule.
type SubmissionTiming struct {
	CanSubmit           bool       `json:"can_submit"`
	IsLate              bool       `json:"is_late"`
	IsWithinGracePeriod bool       `json:"is_within_grace_period"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	GracePeriodEnd      *time.Time `json:"grace_period_end,omitempty"`
	Message             string     `json:"message"`
}

// ValidateSubmissionTiming checks submittedAt against the first active rule of the template. The due
// date is the one following submittedAt minus 30 days.
func (s *SubmissionRule) ValidateSubmissionTiming(ctx context.Context, templateID string, submittedAt time.Time) (*SubmissionTiming, error) {
	rules, err := s.persistence.SubmissionRuleRepository().GetByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission rules: %w", err)
	}

	index := slices.IndexFunc(rules, func(rule *models.SubmissionRule) bool {
		return rule.Status == models.RuleStatusActive
	})
	if index < 0 {
		return &SubmissionTiming{CanSubmit: true, Message: "No submission rules defined"}, nil
	}

	rule := rules[index]

	due := CalculateNextDueDate(rule, submittedAt.AddDate(0, 0, -reminderLookback))
	if due == nil {
		return &SubmissionTiming{CanSubmit: true, Message: "No due date calculated"}, nil
	}

	graceEnd := due.AddDate(0, 0, rule.GracePeriodDays)
	timing := &SubmissionTiming{
		IsLate:         submittedAt.After(*due),
		DueDate:        due,
		GracePeriodEnd: &graceEnd,
	}
	timing.IsWithinGracePeriod = timing.IsLate && !submittedAt.After(graceEnd)
	timing.CanSubmit = !timing.IsLate || timing.IsWithinGracePeriod || rule.AllowLateSubmission

	switch {
	case !timing.IsLate:
		timing.Message = "Submission is on time"
	case timing.IsWithinGracePeriod:
		timing.Message = "Submission is late but within grace period"
	case rule.AllowLateSubmission:
		timing.Message = "Submission is late but allowed"
	default:
		timing.Message = "Submission is too late and not allowed"
	}

	return timing, nil
}

// RuleReminder is a rule whose next due date is a configured number of days away.
type RuleReminder struct {
	Rule       *models.SubmissionRule
	DueDate    time.Time
	DaysBefore int
}

// RulesNeedingReminders returns the active rules with reminders enabled whose next due date, counted in
// whole calendar days from forDate, is one of their reminder days.
func (s *SubmissionRule) RulesNeedingReminders(ctx context.Context, forDate time.Time) ([]*RuleReminder, error) {
	rules, err := s.persistence.SubmissionRuleRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission rules: %w", err)
	}

	reminders := make([]*RuleReminder, 0)

	for _, rule := range rules {
		if rule.Status != models.RuleStatusActive || !rule.SendReminders {
			continue
		}

		days, err := ParseReminderDays(rule.ReminderDaysBefore)
		if err != nil || len(days) == 0 {
			continue
		}

		due := CalculateNextDueDate(rule, forDate)
		if due == nil {
			continue
		}

		until := daysBetween(forDate, *due)
		if slices.Contains(days, until) {
			reminders = append(reminders, &RuleReminder{Rule: rule, DueDate: *due, DaysBefore: until})
		}
	}

	return reminders, nil
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	start := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	return int(end.Sub(start).Hours() / hoursPerDay)
}

func (s *SubmissionRule) save(ctx context.Context, rule *models.SubmissionRule, userID string) (*models.SubmissionRule, error) {
	rule.ModifiedBy = userID

	err := s.persistence.SubmissionRuleRepository().Save(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission rule: %w", err)
	}

	return rule, nil
}
