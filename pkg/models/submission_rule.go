package models

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Frequency is how often a submission rule recurs.
type Frequency string

const (
	FrequencyOnce      Frequency = "Once"
	FrequencyDaily     Frequency = "Daily"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyAnnually  Frequency = "Annually"
)

// RuleStatus is the state of a submission rule.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "Active"
	RuleStatusInactive RuleStatus = "Inactive"
	RuleStatusDraft    RuleStatus = "Draft"
)

// LastDayOfMonth is the DueDay value meaning "the last day of the month".
const LastDayOfMonth = -1

// SubmissionRule is a recurrence and due-date policy for a template.
type SubmissionRule struct {
	ID                  string     `json:"id"`
	TemplateID          string     `json:"template_id"                  validate:"required"`
	RuleName            string     `json:"rule_name"                    validate:"required,max=200"`
	Description         string     `json:"description,omitempty"`
	Frequency           Frequency  `json:"frequency"                    validate:"required,oneof=Once Daily Weekly Monthly Quarterly Annually"`
	DueDay              *int       `json:"due_day,omitempty"`
	DueMonth            *int       `json:"due_month,omitempty"`
	DueTime             string     `json:"due_time,omitempty"`
	SpecificDueDate     *time.Time `json:"specific_due_date,omitempty"`
	CronExpression      string     `json:"cron_expression,omitempty"`
	GracePeriodDays     int        `json:"grace_period_days"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	ReminderDaysBefore  string     `json:"reminder_days_before,omitempty"`
	SendReminders       bool       `json:"send_reminders"`
	Status              RuleStatus `json:"status"`
	CreatedBy           string     `json:"created_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ModifiedBy          string     `json:"modified_by,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CronSchedule parses the rule's cron override with the standard five-field parser.
func (r *SubmissionRule) CronSchedule() (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	return parser.Parse(r.CronExpression)
}
