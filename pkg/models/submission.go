package models

import "time"

// SubmissionStatus is the lifecycle state of a submission.
type SubmissionStatus string

const (
	SubmissionDraft       SubmissionStatus = "Draft"
	SubmissionSubmitted   SubmissionStatus = "Submitted"
	SubmissionInApproval  SubmissionStatus = "InApproval"
	SubmissionUnderReview SubmissionStatus = "UnderReview"
	SubmissionApproved    SubmissionStatus = "Approved"
	SubmissionRejected    SubmissionStatus = "Rejected"
	SubmissionRevised     SubmissionStatus = "Revised"
	SubmissionCancelled   SubmissionStatus = "Cancelled"
)

// SubmissionStatuses lists every status in lifecycle order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionDraft,
	SubmissionSubmitted,
	SubmissionInApproval,
	SubmissionUnderReview,
	SubmissionApproved,
	SubmissionRejected,
	SubmissionRevised,
	SubmissionCancelled,
}

// IsSubmitted reports whether the submission has left the Draft state and was not cancelled.
func (s SubmissionStatus) IsSubmitted() bool {
	return s != SubmissionDraft && s != SubmissionCancelled && s != ""
}

// Submission is a filled-in instance of a template for a tenant and reporting period.
type Submission struct {
	ID               string           `json:"id"`
	TemplateID       string           `json:"template_id"`
	TenantID         string           `json:"tenant_id,omitempty"`
	ReportingYear    int              `json:"reporting_year"`
	ReportingMonth   int              `json:"reporting_month"`
	ReportingPeriod  *time.Time       `json:"reporting_period,omitempty"`
	SnapshotDate     *time.Time       `json:"snapshot_date,omitempty"`
	Status           SubmissionStatus `json:"status"`
	SubmittedBy      string           `json:"submitted_by,omitempty"`
	SubmittedDate    *time.Time       `json:"submitted_date,omitempty"`
	ReviewedBy       string           `json:"reviewed_by,omitempty"`
	ReviewedDate     *time.Time       `json:"reviewed_date,omitempty"`
	ApprovalComments string           `json:"approval_comments,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedDate      time.Time        `json:"created_date"`
	ModifiedBy       string           `json:"modified_by,omitempty"`
	ModifiedDate     *time.Time       `json:"modified_date,omitempty"`
	LastSavedDate    *time.Time       `json:"last_saved_date,omitempty"`
	CurrentSection   int              `json:"current_section"`
	Responses        []*Response      `json:"responses,omitempty"`
}

// EffectiveDate is the submitted date, or the created date for unsubmitted forms.
func (s *Submission) EffectiveDate() time.Time {
	if s.SubmittedDate != nil {
		return *s.SubmittedDate
	}

	return s.CreatedDate
}

// Response returns the response for itemID.
func (s *Submission) Response(itemID string) *Response {
	for _, r := range s.Responses {
		if r.ItemID == itemID {
			return r
		}
	}

	return nil
}

// Response is the answer to one item of a submission.
type Response struct {
	ID                  string     `json:"id"`
	ItemID              string     `json:"item_id"`
	TextValue           *string    `json:"text_value,omitempty"`
	NumericValue        *float64   `json:"numeric_value,omitempty"`
	DateValue           *time.Time `json:"date_value,omitempty"`
	BooleanValue        *bool      `json:"boolean_value,omitempty"`
	SelectedOptionID    string     `json:"selected_option_id,omitempty"`
	SelectedScoreValue  *float64   `json:"selected_score_value,omitempty"`
	SelectedScoreWeight *float64   `json:"selected_score_weight,omitempty"`
	WeightedScore       *float64   `json:"weighted_score,omitempty"`
	Remarks             string     `json:"remarks,omitempty"`
	CreatedDate         time.Time  `json:"created_date"`
	ModifiedDate        *time.Time `json:"modified_date,omitempty"`
}
