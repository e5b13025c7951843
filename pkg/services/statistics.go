package services

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

const recentSubmissionsLimit = 10

// TrendPeriod is the bucket size of a submission trend.
type TrendPeriod string

const (
	TrendDaily     TrendPeriod = "Daily"
	TrendWeekly    TrendPeriod = "Weekly"
	TrendMonthly   TrendPeriod = "Monthly"
	TrendQuarterly TrendPeriod = "Quarterly"
)

// Statistics reports on submissions.
type Statistics struct {
	persistence persistence.Persistence
}

func NewStatistics(persistence persistence.Persistence) *Statistics {
	return &Statistics{persistence: persistence}
}

// StatisticsFilter narrows the submissions a report covers. Dates apply to the effective date.
type StatisticsFilter struct {
	TemplateID string
	TenantID   string
	From       *time.Time
	To         *time.Time
}

func (s *Statistics) submissions(ctx context.Context, filter StatisticsFilter) ([]*models.Submission, error) {
	submissions, err := s.persistence.SubmissionRepository().Find(ctx, persistence.SubmissionFilter{
		TemplateID: filter.TemplateID,
		TenantID:   filter.TenantID,
		From:       filter.From,
		To:         filter.To,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

type StatusSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func (s *Statistics) Summary(ctx context.Context, filter StatisticsFilter) (*StatusSummary, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return summarize(submissions), nil
}

func summarize(submissions []*models.Submission) *StatusSummary {
	summary := &StatusSummary{Total: len(submissions), ByStatus: make(map[string]int, len(models.SubmissionStatuses))}
	for _, status := range models.SubmissionStatuses {
		summary.ByStatus[string(status)] = 0
	}

	for _, submission := range submissions {
		summary.ByStatus[string(submission.Status)]++
	}

	return summary
}

type OnTimeStatistics struct {
	Total            int     `json:"total"`
	OnTime           int     `json:"on_time"`
	Late             int     `json:"late"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	LatePercentage   float64 `json:"late_percentage"`
}

func (s *Statistics) OnTime(ctx context.Context, filter StatisticsFilter) (*OnTimeStatistics, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return onTime(submissions), nil
}

// onTime counts a submission as on time when its effective day is not after its reporting period.
// Submissions without a reporting period are on time.
func onTime(submissions []*models.Submission) *OnTimeStatistics {
	stats := &OnTimeStatistics{Total: len(submissions)}

	for _, submission := range submissions {
		if submission.ReportingPeriod == nil || !truncateDay(submission.EffectiveDate()).After(truncateDay(*submission.ReportingPeriod)) {
			stats.OnTime++
		} else {
			stats.Late++
		}
	}

	stats.OnTimePercentage = percentage(stats.OnTime, stats.Total)
	stats.LatePercentage = percentage(stats.Late, stats.Total)

	return stats
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(part)/float64(total)*10000) / 100
}

// AverageCompletionHours is the mean time from creation to submission, or nil when nothing was submitted.
func (s *Statistics) AverageCompletionHours(ctx context.Context, filter StatisticsFilter) (*float64, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return averageCompletionHours(submissions), nil
}

func averageCompletionHours(submissions []*models.Submission) *float64 {
	var hours []float64

	for _, submission := range submissions {
		if submission.SubmittedDate != nil {
			hours = append(hours, submission.SubmittedDate.Sub(submission.CreatedDate).Hours())
		}
	}

	return mean(hours)
}

type TrendPoint struct {
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Count     int       `json:"count"`
	Submitted int       `json:"submitted"`
	Approved  int       `json:"approved"`
}

func (s *Statistics) Trends(ctx context.Context, filter StatisticsFilter, period TrendPeriod) ([]*TrendPoint, error) {
	if !slices.Contains([]TrendPeriod{TrendDaily, TrendWeekly, TrendMonthly, TrendQuarterly}, period) {
		return nil, NewValidationError("Trends", "INVALID_PERIOD", fmt.Sprintf("invalid trend period '%s'", period), ErrInvalidRequest)
	}

	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return trends(submissions, period), nil
}

func trends(submissions []*models.Submission, period TrendPeriod) []*TrendPoint {
	buckets := make(map[time.Time]*TrendPoint)

	for _, submission := range submissions {
		start, label := bucketOf(submission.EffectiveDate().UTC(), period)

		point, ok := buckets[start]
		if !ok {
			point = &TrendPoint{Date: start, Label: label}
			buckets[start] = point
		}

		point.Count++

		if submission.Status.IsSubmitted() {
			point.Submitted++
		}

		if submission.Status == models.SubmissionApproved {
			point.Approved++
		}
	}

	points := make([]*TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		points = append(points, point)
	}

	slices.SortFunc(points, func(a, b *TrendPoint) int {
		return a.Date.Compare(b.Date)
	})

	return points
}

func bucketOf(date time.Time, period TrendPeriod) (time.Time, string) {
	day := truncateDay(date)

	switch period {
	case TrendWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)

		return monday, "Week of " + monday.Format("Jan 02, 2006")
	case TrendMonthly:
		month := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

		return month, month.Format("Jan 2006")
	case TrendQuarterly:
		quarter := (int(day.Month()) - 1) / monthsPerQuarter
		start := time.Date(day.Year(), time.Month(quarter*monthsPerQuarter+1), 1, 0, 0, 0, 0, time.UTC)

		return start, fmt.Sprintf("Q%d %d", quarter+1, day.Year())
	default:
		return day, day.Format("Jan 02, 2006")
	}
}

type TenantStatistics struct {
	TenantID     string  `json:"tenant_id"`
	TenantName   string  `json:"tenant_name"`
	Total        int     `json:"total"`
	Submitted    int     `json:"submitted"`
	Approved     int     `json:"approved"`
	ApprovalRate float64 `json:"approval_rate"`
}

// TenantComparison reports per tenant, busiest first. Submissions without a tenant are left out.
func (s *Statistics) TenantComparison(ctx context.Context, filter StatisticsFilter) ([]*TenantStatistics, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	tenants, err := s.persistence.DirectoryRepository().Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	names := make(map[string]string, len(tenants))
	for _, tenant := range tenants {
		names[tenant.ID] = tenant.Name
	}

	return tenantComparison(submissions, names), nil
}

func tenantComparison(submissions []*models.Submission, names map[string]string) []*TenantStatistics {
	byTenant := make(map[string]*TenantStatistics)

	for _, submission := range submissions {
		if submission.TenantID == "" {
			continue
		}

		stats, ok := byTenant[submission.TenantID]
		if !ok {
			stats = &TenantStatistics{TenantID: submission.TenantID, TenantName: names[submission.TenantID]}
			byTenant[submission.TenantID] = stats
		}

		stats.Total++

		if submission.Status.IsSubmitted() {
			stats.Submitted++
		}

		if submission.Status == models.SubmissionApproved {
			stats.Approved++
		}
	}

	result := make([]*TenantStatistics, 0, len(byTenant))
	for _, stats := range byTenant {
		stats.ApprovalRate = percentage(stats.Approved, stats.Total)
		result = append(result, stats)
	}

	slices.SortFunc(result, func(a, b *TenantStatistics) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), cmp.Compare(a.TenantID, b.TenantID))
	})

	return result
}

type UserStatistics struct {
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	Total          int     `json:"total"`
	Submitted      int     `json:"submitted"`
	CompletionRate float64 `json:"completion_rate"`
}

func (s *Statistics) UserRates(ctx context.Context, filter StatisticsFilter) ([]*UserStatistics, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	users, err := s.persistence.DirectoryRepository().Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}

	return userRates(submissions, names), nil
}

func userRates(submissions []*models.Submission, names map[string]string) []*UserStatistics {
	byUser := make(map[string]*UserStatistics)

	for _, submission := range submissions {
		stats, ok := byUser[submission.SubmittedBy]
		if !ok {
			stats = &UserStatistics{UserID: submission.SubmittedBy, UserName: names[submission.SubmittedBy]}
			byUser[submission.SubmittedBy] = stats
		}

		stats.Total++

		if submission.Status.IsSubmitted() {
			stats.Submitted++
		}
	}

	result := make([]*UserStatistics, 0, len(byUser))
	for _, stats := range byUser {
		stats.CompletionRate = percentage(stats.Submitted, stats.Total)
		result = append(result, stats)
	}

	slices.SortFunc(result, func(a, b *UserStatistics) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), cmp.Compare(a.UserID, b.UserID))
	})

	return result
}

// RecentSubmissions returns the latest submissions by effective date.
func (s *Statistics) RecentSubmissions(ctx context.Context, filter StatisticsFilter) ([]*models.Submission, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return recent(submissions), nil
}

func recent(submissions []*models.Submission) []*models.Submission {
	sorted := slices.Clone(submissions)
	slices.SortStableFunc(sorted, func(a, b *models.Submission) int {
		return b.EffectiveDate().Compare(a.EffectiveDate())
	})

	return sorted[:min(len(sorted), recentSubmissionsLimit)]
}

type Dashboard struct {
	Summary                *StatusSummary       `json:"summary"`
	OnTime                 *OnTimeStatistics    `json:"on_time"`
	AverageCompletionHours *float64             `json:"average_completion_hours,omitempty"`
	Trends                 []*TrendPoint        `json:"trends"`
	Tenants                []*TenantStatistics  `json:"tenants"`
	Users                  []*UserStatistics    `json:"users"`
	Recent                 []*models.Submission `json:"recent"`
}

// Dashboard combines every report over one read of the submissions. Trends are daily.
func (s *Statistics) Dashboard(ctx context.Context, filter StatisticsFilter) (*Dashboard, error) {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	tenants, err := s.TenantComparison(ctx, filter)
	if err != nil {
		return nil, err
	}

	users, err := s.UserRates(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Summary:                summarize(submissions),
		OnTime:                 onTime(submissions),
		AverageCompletionHours: averageCompletionHours(submissions),
		Trends:                 trends(submissions, TrendDaily),
		Tenants:                tenants,
		Users:                  users,
		Recent:                 recent(submissions),
	}, nil
}

var exportHeader = []string{
	"submission_id", "template_id", "tenant_id", "status", "submitted_by",
	"reporting_period", "created_date", "submitted_date",
}

// ExportCSV writes one row per submission, newest first.
func (s *Statistics) ExportCSV(ctx context.Context, filter StatisticsFilter, w io.Writer) error {
	submissions, err := s.submissions(ctx, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	err = writer.Write(exportHeader)
	if err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, submission := range submissions {
		err = writer.Write([]string{
			submission.ID,
			submission.TemplateID,
			submission.TenantID,
			string(submission.Status),
			submission.SubmittedBy,
			formatOptionalDate(submission.ReportingPeriod, dateLayout),
			submission.CreatedDate.UTC().Format(time.RFC3339),
			formatOptionalDate(submission.SubmittedDate, time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func formatOptionalDate(date *time.Time, layout string) string {
	if date == nil {
		return ""
	}

	return date.UTC().Format(layout)
}
