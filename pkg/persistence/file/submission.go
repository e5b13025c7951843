package file

import (
	"context"
	"slices"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// SubmissionRepository handles submission file operations. Responses are stored inside the submission file.
type SubmissionRepository struct {
	submissions *collection[models.Submission]
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(root string) *SubmissionRepository {
	return &SubmissionRepository{submissions: newCollection[models.Submission](root, "submissions")}
}

// Find returns the submissions matching filter, newest first.
func (r *SubmissionRepository) Find(_ context.Context, filter persistence.SubmissionFilter) ([]*models.Submission, error) {
	submissions, err := r.submissions.filter(filter.Matches)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(submissions, func(a, b *models.Submission) int {
		return b.CreatedDate.Compare(a.CreatedDate)
	})

	return submissions, nil
}

func (r *SubmissionRepository) GetByID(_ context.Context, id string) (*models.Submission, error) {
	return r.submissions.get(id)
}

func (r *SubmissionRepository) Save(_ context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		id, err := newID("submission")
		if err != nil {
			return err
		}

		submission.ID = id
	}

	now := time.Now().UTC()
	if submission.CreatedDate.IsZero() {
		submission.CreatedDate = now
	}

	for _, response := range submission.Responses {
		if response.ID == "" {
			id, err := newID("response")
			if err != nil {
				return err
			}

			response.ID = id
		}

		if response.CreatedDate.IsZero() {
			response.CreatedDate = now
		}
	}

	return r.submissions.save(submission.ID, submission)
}

func (r *SubmissionRepository) Delete(_ context.Context, id string) error {
	return r.submissions.delete(id)
}
