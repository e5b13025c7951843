package file

import (
	"context"
	"slices"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// ProgressRepository handles workflow progress file operations.
type ProgressRepository struct {
	progress *collection[models.StepProgress]
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(root string) *ProgressRepository {
	return &ProgressRepository{progress: newCollection[models.StepProgress](root, "workflow_progress")}
}

// GetBySubmission returns the progress of a submission ordered by step order.
func (r *ProgressRepository) GetBySubmission(_ context.Context, submissionID string) ([]*models.StepProgress, error) {
	items, err := r.progress.filter(func(p *models.StepProgress) bool {
		return p.SubmissionID == submissionID
	})
	if err != nil {
		return nil, err
	}

	sortProgress(items)

	return items, nil
}

func (r *ProgressRepository) GetByID(_ context.Context, id string) (*models.StepProgress, error) {
	return r.progress.get(id)
}

// GetOpen returns every Pending or InProgress record.
func (r *ProgressRepository) GetOpen(_ context.Context) ([]*models.StepProgress, error) {
	items, err := r.progress.filter(func(p *models.StepProgress) bool {
		return p.Status.IsOpen()
	})
	if err != nil {
		return nil, err
	}

	sortProgress(items)

	return items, nil
}

func (r *ProgressRepository) CountByStep(_ context.Context, stepID string) (int, error) {
	items, err := r.progress.filter(func(p *models.StepProgress) bool {
		return p.StepID == stepID
	})
	if err != nil {
		return 0, err
	}

	return len(items), nil
}

func (r *ProgressRepository) Save(_ context.Context, progress *models.StepProgress) error {
	if progress.ID == "" {
		id, err := newID("workflow progress")
		if err != nil {
			return err
		}

		progress.ID = id
	}

	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}

	progress.UpdatedAt = now

	return r.progress.save(progress.ID, progress)
}

func (r *ProgressRepository) DeleteBySubmission(ctx context.Context, submissionID string) error {
	items, err := r.GetBySubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	for _, item := range items {
		err = r.progress.delete(item.ID)
		if err != nil {
			return err
		}
	}

	return nil
}

func sortProgress(items []*models.StepProgress) {
	slices.SortStableFunc(items, func(a, b *models.StepProgress) int {
		if a.StepOrder != b.StepOrder {
			return a.StepOrder - b.StepOrder
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
