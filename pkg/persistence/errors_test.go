package persistence_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("entity error unwraps to sentinel", func(t *testing.T) {
		err := persistence.NewEntityError("GetByID", "template", "tpl-1", persistence.ErrTemplateNotFound)

		assert.True(t, persistence.IsTemplateNotFound(err))
		assert.True(t, persistence.IsNotFound(err))
		assert.True(t, errors.Is(err, persistence.ErrTemplateNotFound))
		assert.False(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("entity error contains context", func(t *testing.T) {
		err := persistence.NewEntityError("Delete", "workflow", "wf-9", persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "wf-9")
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("wrapped sort errors are detected", func(t *testing.T) {
		err := fmt.Errorf("list: %w", persistence.ErrInvalidSortField)

		assert.True(t, persistence.IsInvalidSortField(err))
		assert.False(t, persistence.IsNotFound(err))
	})
}

func TestSubmissionFilter_Matches(t *testing.T) {
	t.Parallel()

	submitted := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	approved := models.SubmissionApproved
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	submission := &models.Submission{
		TemplateID:    "tpl-1",
		TenantID:      "tenant-1",
		SubmittedBy:   "user-1",
		Status:        models.SubmissionApproved,
		CreatedDate:   submitted.AddDate(0, -1, 0),
		SubmittedDate: &submitted,
	}

	tests := []struct {
		name   string
		filter persistence.SubmissionFilter
		want   bool
	}{
		{name: "empty filter", filter: persistence.SubmissionFilter{}, want: true},
		{name: "template match", filter: persistence.SubmissionFilter{TemplateID: "tpl-1"}, want: true},
		{name: "template mismatch", filter: persistence.SubmissionFilter{TemplateID: "tpl-2"}, want: false},
		{name: "tenant mismatch", filter: persistence.SubmissionFilter{TenantID: "tenant-2"}, want: false},
		{name: "status match", filter: persistence.SubmissionFilter{Status: &approved}, want: true},
		{name: "submitted date inside range", filter: persistence.SubmissionFilter{From: &from, To: &to}, want: true},
		{name: "submitted date after range", filter: persistence.SubmissionFilter{To: &from}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Matches(submission))
		})
	}
}
