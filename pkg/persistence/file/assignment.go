package file

import (
	"context"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// AssignmentRepository handles assignment file operations.
type AssignmentRepository struct {
	assignments *collection[models.Assignment]
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(root string) *AssignmentRepository {
	return &AssignmentRepository{assignments: newCollection[models.Assignment](root, "assignments")}
}

func (r *AssignmentRepository) GetAll(_ context.Context) ([]*models.Assignment, error) {
	return r.assignments.all()
}

func (r *AssignmentRepository) GetByTemplate(_ context.Context, templateID string) ([]*models.Assignment, error) {
	return r.assignments.filter(func(a *models.Assignment) bool {
		return a.TemplateID == templateID
	})
}

func (r *AssignmentRepository) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	return r.assignments.get(id)
}

func (r *AssignmentRepository) Save(_ context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		id, err := newID("assignment")
		if err != nil {
			return err
		}

		assignment.ID = id
	}

	if assignment.AssignedDate.IsZero() {
		assignment.AssignedDate = time.Now().UTC()
	}

	return r.assignments.save(assignment.ID, assignment)
}

func (r *AssignmentRepository) Delete(_ context.Context, id string) error {
	return r.assignments.delete(id)
}
