package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		validation bool
		conflict   bool
		notFound   bool
		forbidden  bool
	}{
		{name: "validation", err: NewValidationError("op", "CODE", "bad", ErrInvalidRequest), validation: true},
		{name: "wrapped conflict", err: fmt.Errorf("saving: %w", newConflictError("op", "", ErrDuplicateCode)), conflict: true},
		{name: "not found", err: fmt.Errorf("loading: %w", ErrTemplateNotFound), notFound: true},
		{name: "forbidden", err: ErrNotOwner, forbidden: true},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.forbidden, IsForbiddenError(tt.err))
		})
	}
}

func TestServiceError_Message(t *testing.T) {
	t.Parallel()

	err := NewValidationError("Submit", "TIMING", "Submission is too late and not allowed", ErrSubmissionTiming)
	assert.Equal(t, "Submit: Submission is too late and not allowed", err.Error())
	assert.ErrorIs(t, err, ErrSubmissionTiming)

	bare := &ServiceError{Op: "Delete", Err: ErrCategoryInUse}
	assert.Equal(t, "Delete: category is used by templates", bare.Error())
}
