package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestCalculateNextDueDate(t *testing.T) {
	t.Parallel()

	// Saturday.
	from := at(2026, time.January, 31, 10, 0)
	specific := at(2026, time.June, 30, 17, 0)

	tests := []struct {
		name string
		rule *models.SubmissionRule
		from time.Time
		want *time.Time
	}{
		{
			name: "daily later today",
			rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, DueTime: "17:00"},
			want: timePtr(at(2026, time.January, 31, 17, 0)),
		},
		{
			name: "daily time passed",
			rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, DueTime: "09:00"},
			want: timePtr(at(2026, time.February, 1, 9, 0)),
		},
		{
			name: "weekly next monday",
			rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(1)},
			want: timePtr(at(2026, time.February, 2, 0, 0)),
		},
		{
			name: "weekly today before due time",
			rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(6), DueTime: "12:00"},
			want: timePtr(at(2026, time.January, 31, 12, 0)),
		},
		{
			name: "weekly today after due time",
			rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(6), DueTime: "08:00"},
			want: timePtr(at(2026, time.February, 7, 8, 0)),
		},
		{
			name: "weekly invalid day",
			rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(7)},
			want: nil,
		},
		{
			name: "monthly next month",
			rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(5)},
			want: timePtr(at(2026, time.February, 5, 0, 0)),
		},
		{
			name: "monthly skips months without the day",
			rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(31)},
			want: timePtr(at(2026, time.March, 31, 0, 0)),
		},
		{
			name: "monthly last day",
			rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(models.LastDayOfMonth)},
			want: timePtr(at(2026, time.February, 28, 0, 0)),
		},
		{
			name: "monthly without day",
			rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly},
			want: nil,
		},
		{
			name: "quarterly within quarter",
			rule: &models.SubmissionRule{Frequency: models.FrequencyQuarterly, DueDay: intPtr(15)},
			want: timePtr(at(2026, time.February, 15, 0, 0)),
		},
		{
			name: "quarterly rolls into next quarter",
			rule: &models.SubmissionRule{Frequency: models.FrequencyQuarterly, DueDay: intPtr(15)},
			from: at(2026, time.March, 20, 0, 0),
			want: timePtr(at(2026, time.April, 15, 0, 0)),
		},
		{
			name: "annually this year",
			rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(5), DueMonth: intPtr(3), DueTime: "18:30"},
			want: timePtr(at(2026, time.March, 5, 18, 30)),
		},
		{
			name: "annually leap day",
			rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(29), DueMonth: intPtr(2)},
			want: timePtr(at(2028, time.February, 29, 0, 0)),
		},
		{
			name: "annually without month",
			rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(5)},
			want: nil,
		},
		{
			name: "once",
			rule: &models.SubmissionRule{Frequency: models.FrequencyOnce, SpecificDueDate: &specific},
			want: &specific,
		},
		{
			name: "cron overrides frequency",
			rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, CronExpression: "0 9 * * 1"},
			want: timePtr(at(2026, time.February, 2, 9, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := tt.from
			if start.IsZero() {
				start = from
			}

			got := CalculateNextDueDate(tt.rule, start)
			if tt.want == nil {
				assert.Nil(t, got)

				return
			}

			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCalculateNextDueDate_DaylightSaving(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks move forward at 02:00 on 2026-03-08 in New York.
	from := time.Date(2026, time.March, 8, 0, 30, 0, 0, newYork)

	tests := []struct {
		name string
		rule *models.SubmissionRule
		want time.Time
	}{
		{
			name: "daily",
			rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, DueTime: "17:00"},
			want: time.Date(2026, time.March, 8, 17, 0, 0, 0, newYork),
		},
		{
			name: "monthly",
			rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(8), DueTime: "09:30"},
			want: time.Date(2026, time.March, 8, 9, 30, 0, 0, newYork),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CalculateNextDueDate(tt.rule, from)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
			assert.Equal(t, tt.want.Hour(), got.Hour())
		})
	}
}

func TestNextDueDates(t *testing.T) {
	t.Parallel()

	monthly := &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(31)}
	dates := NextDueDates(monthly, at(2026, time.January, 1, 0, 0), 3)
	require.Len(t, dates, 3)
	assert.Equal(t, time.January, dates[0].Month())
	assert.Equal(t, time.March, dates[1].Month())
	assert.Equal(t, time.May, dates[2].Month())

	specific := at(2026, time.June, 30, 0, 0)
	once := &models.SubmissionRule{Frequency: models.FrequencyOnce, SpecificDueDate: &specific}
	assert.Len(t, NextDueDates(once, at(2026, time.January, 1, 0, 0), 3), 1)
}

func TestScheduleDescription(t *testing.T) {
	t.Parallel()

	specific := at(2026, time.March, 5, 0, 0)

	tests := []struct {
		rule *models.SubmissionRule
		want string
	}{
		{rule: &models.SubmissionRule{}, want: "No schedule"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyOnce}, want: "One-time"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyOnce, SpecificDueDate: &specific}, want: "One-time on 2026-03-05"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyDaily}, want: "Daily"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(1)}, want: "Weekly on Monday"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(5)}, want: "Monthly on 5th"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(1)}, want: "Monthly on 1st"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(12)}, want: "Monthly on 12th"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(22)}, want: "Monthly on 22nd"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(models.LastDayOfMonth)}, want: "Monthly on last day"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyQuarterly, DueDay: intPtr(23)}, want: "Quarterly on 23rd"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyQuarterly, DueDay: intPtr(models.LastDayOfMonth)}, want: "Quarterly on last day"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(5), DueMonth: intPtr(3)}, want: "Annually on March 5th"},
		{rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(-1), DueMonth: intPtr(3)}, want: "Annually on last day of March"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ScheduleDescription(tt.rule))
		})
	}
}

func TestParseReminderDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    []int
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "ordered", raw: "7,3,1", want: []int{7, 3, 1}},
		{name: "unordered with duplicates and zero", raw: "1, 7,3,7, 0", want: []int{7, 3, 1}},
		{name: "not a number", raw: "7,soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseReminderDays(tt.raw)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    *models.SubmissionRule
		wantErr bool
	}{
		{name: "valid monthly", rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(10), DueTime: "17:00"}},
		{name: "valid daily", rule: &models.SubmissionRule{Frequency: models.FrequencyDaily}},
		{name: "unknown frequency", rule: &models.SubmissionRule{Frequency: "Hourly"}, wantErr: true},
		{name: "weekly day out of range", rule: &models.SubmissionRule{Frequency: models.FrequencyWeekly, DueDay: intPtr(7)}, wantErr: true},
		{name: "monthly day zero", rule: &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(0)}, wantErr: true},
		{name: "quarterly last day", rule: &models.SubmissionRule{Frequency: models.FrequencyQuarterly, DueDay: intPtr(-1)}},
		{name: "annually without month", rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(1)}, wantErr: true},
		{name: "annually month out of range", rule: &models.SubmissionRule{Frequency: models.FrequencyAnnually, DueDay: intPtr(1), DueMonth: intPtr(13)}, wantErr: true},
		{name: "once without date", rule: &models.SubmissionRule{Frequency: models.FrequencyOnce}, wantErr: true},
		{name: "bad due time", rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, DueTime: "5pm"}, wantErr: true},
		{name: "bad cron", rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, CronExpression: "every day"}, wantErr: true},
		{name: "bad reminders", rule: &models.SubmissionRule{Frequency: models.FrequencyDaily, ReminderDaysBefore: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateSchedule(tt.rule)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSchedule)

				return
			}

			require.NoError(t, err)
		})
	}
}

func createTestRule(t *testing.T, s *Services, templateID string, rule *models.SubmissionRule) *models.SubmissionRule {
	t.Helper()

	rule.TemplateID = templateID
	if rule.RuleName == "" {
		rule.RuleName = "Monthly deadline"
	}

	created, err := s.Rules.Create(t.Context(), rule, "admin")
	require.NoError(t, err)

	return created
}

func TestSubmissionRule_CRUD(t *testing.T) {
	s, _ := newTestServices(t)

	template := createTestTemplate(t, s, "Monthly staffing")

	_, err := s.Rules.Create(t.Context(), &models.SubmissionRule{
		TemplateID: template.ID, RuleName: "Broken", Frequency: models.FrequencyWeekly,
	}, "admin")
	require.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = s.Rules.Create(t.Context(), &models.SubmissionRule{
		TemplateID: "missing", RuleName: "Orphan", Frequency: models.FrequencyDaily,
	}, "admin")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	rule := createTestRule(t, s, template.ID, &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(10)})
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, models.RuleStatusActive, rule.Status)
	assert.Equal(t, "admin", rule.CreatedBy)

	createTestRule(t, s, template.ID, &models.SubmissionRule{RuleName: "Annual audit", Frequency: models.FrequencyAnnually, DueDay: intPtr(1), DueMonth: intPtr(6)})

	rules, err := s.Rules.ListByTemplate(t.Context(), template.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Annual audit", rules[0].RuleName)

	updated, err := s.Rules.Update(t.Context(), rule.ID, &models.SubmissionRule{
		RuleName: "Monthly deadline", Frequency: models.FrequencyMonthly, DueDay: intPtr(15), GracePeriodDays: 2,
	}, "editor")
	require.NoError(t, err)
	assert.Equal(t, 15, *updated.DueDay)
	assert.Equal(t, "editor", updated.ModifiedBy)
	assert.Equal(t, models.RuleStatusActive, updated.Status)

	toggled, err := s.Rules.Toggle(t.Context(), rule.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RuleStatusInactive, toggled.Status)

	toggled, err = s.Rules.Toggle(t.Context(), rule.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RuleStatusActive, toggled.Status)

	require.NoError(t, s.Rules.Delete(t.Context(), rule.ID))

	_, err = s.Rules.Get(t.Context(), rule.ID)
	require.ErrorIs(t, err, ErrSubmissionRuleNotFound)
	require.ErrorIs(t, s.Rules.Delete(t.Context(), rule.ID), ErrSubmissionRuleNotFound)
}

func TestSubmissionRule_CanAddRuleToTemplate(t *testing.T) {
	s, _ := newTestServices(t)

	template := createPublishedTemplate(t, s, "Quarterly review")

	ok, err := s.Rules.CanAddRuleToTemplate(t.Context(), template.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Templates.Archive(t.Context(), template.ID, "admin", "replaced")
	require.NoError(t, err)

	ok, err = s.Rules.CanAddRuleToTemplate(t.Context(), template.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Rules.Create(t.Context(), &models.SubmissionRule{
		TemplateID: template.ID, RuleName: "Late", Frequency: models.FrequencyDaily,
	}, "admin")
	require.ErrorIs(t, err, ErrTemplateArchived)
}

func TestSubmissionRule_ValidateSubmissionTiming(t *testing.T) {
	s, _ := newTestServices(t)

	template := createTestTemplate(t, s, "Monthly staffing")

	timing, err := s.Rules.ValidateSubmissionTiming(t.Context(), template.ID, at(2026, time.February, 9, 12, 0))
	require.NoError(t, err)
	assert.True(t, timing.CanSubmit)
	assert.Equal(t, "No submission rules defined", timing.Message)

	createTestRule(t, s, template.ID, &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(10), GracePeriodDays: 3})

	tests := []struct {
		name        string
		submittedAt time.Time
		canSubmit   bool
		late        bool
		message     string
	}{
		{name: "before due date", submittedAt: at(2026, time.February, 9, 12, 0), canSubmit: true, message: "Submission is on time"},
		{name: "within grace period", submittedAt: at(2026, time.February, 12, 12, 0), canSubmit: true, late: true, message: "Submission is late but within grace period"},
		{name: "after grace period", submittedAt: at(2026, time.February, 20, 12, 0), canSubmit: false, late: true, message: "Submission is too late and not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing, err := s.Rules.ValidateSubmissionTiming(t.Context(), template.ID, tt.submittedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.canSubmit, timing.CanSubmit)
			assert.Equal(t, tt.late, timing.IsLate)
			assert.Equal(t, tt.message, timing.Message)
			require.NotNil(t, timing.DueDate)
			assert.True(t, at(2026, time.February, 10, 0, 0).Equal(*timing.DueDate))
		})
	}
}

func TestSubmissionRule_LateSubmissionAllowed(t *testing.T) {
	s, _ := newTestServices(t)

	template := createTestTemplate(t, s, "Monthly staffing")
	createTestRule(t, s, template.ID, &models.SubmissionRule{Frequency: models.FrequencyMonthly, DueDay: intPtr(10), AllowLateSubmission: true})

	timing, err := s.Rules.ValidateSubmissionTiming(t.Context(), template.ID, at(2026, time.February, 20, 12, 0))
	require.NoError(t, err)
	assert.True(t, timing.CanSubmit)
	assert.Equal(t, "Submission is late but allowed", timing.Message)
}

func TestSubmissionRule_RulesNeedingReminders(t *testing.T) {
	s, _ := newTestServices(t)

	template := createTestTemplate(t, s, "Monthly staffing")
	reminded := createTestRule(t, s, template.ID, &models.SubmissionRule{
		Frequency: models.FrequencyMonthly, DueDay: intPtr(10), ReminderDaysBefore: "7,3,1", SendReminders: true,
	})
	createTestRule(t, s, template.ID, &models.SubmissionRule{
		RuleName: "Silent", Frequency: models.FrequencyMonthly, DueDay: intPtr(10), ReminderDaysBefore: "7",
	})

	reminders, err := s.Rules.RulesNeedingReminders(t.Context(), at(2026, time.February, 3, 8, 0))
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, reminded.ID, reminders[0].Rule.ID)
	assert.Equal(t, 7, reminders[0].DaysBefore)
	assert.True(t, at(2026, time.February, 10, 0, 0).Equal(reminders[0].DueDate))

	reminders, err = s.Rules.RulesNeedingReminders(t.Context(), at(2026, time.February, 4, 8, 0))
	require.NoError(t, err)
	assert.Empty(t, reminders)
}
