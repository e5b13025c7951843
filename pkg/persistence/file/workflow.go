package file

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// WorkflowRepository handles workflow file operations. Steps are stored inside the workflow file.
type WorkflowRepository struct {
	workflows *collection[models.Workflow]
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{workflows: newCollection[models.Workflow](root, "workflows")}
}

func (r *WorkflowRepository) GetAll(_ context.Context) ([]*models.Workflow, error) {
	workflows, err := r.workflows.all()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(workflows, func(a, b *models.Workflow) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its ID with steps sorted by order.
func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	workflow, err := r.workflows.get(id)
	if err != nil || workflow == nil {
		return workflow, err
	}

	workflow.SortSteps()

	return workflow, nil
}

// Save saves a workflow and its steps, generating missing step IDs.
func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		id, err := newID("workflow")
		if err != nil {
			return err
		}

		workflow.ID = id
	}

	for _, step := range workflow.Steps {
		if step.ID == "" {
			id, err := newID("workflow step")
			if err != nil {
				return err
			}

			step.ID = id
		}

		step.WorkflowID = workflow.ID
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	return r.workflows.save(workflow.ID, workflow)
}

// Delete removes a workflow by its ID.
func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	return r.workflows.delete(id)
}

// WorkflowActionRepository handles workflow action file operations.
type WorkflowActionRepository struct {
	actions *collection[models.WorkflowAction]
}

// NewWorkflowActionRepository creates a new action repository.
// The default action catalogue is returned until an action is saved.
func NewWorkflowActionRepository(root string) *WorkflowActionRepository {
	return &WorkflowActionRepository{actions: newCollection[models.WorkflowAction](root, "workflow_actions")}
}

func (r *WorkflowActionRepository) GetAll(_ context.Context) ([]*models.WorkflowAction, error) {
	actions, err := r.actions.all()
	if err != nil {
		return nil, err
	}

	if len(actions) == 0 {
		return models.DefaultWorkflowActions(), nil
	}

	return actions, nil
}

func (r *WorkflowActionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowAction, error) {
	actions, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, action := range actions {
		if action.ID == id {
			return action, nil
		}
	}

	return nil, nil
}

func (r *WorkflowActionRepository) Save(ctx context.Context, action *models.WorkflowAction) error {
	existing, err := r.actions.all()
	if err != nil {
		return err
	}

	// Persist the seeded catalogue before the first custom action so it is not lost.
	if len(existing) == 0 {
		for _, seeded := range models.DefaultWorkflowActions() {
			if seeded.ID == action.ID {
				continue
			}

			err = r.actions.save(seeded.ID, seeded)
			if err != nil {
				return err
			}
		}
	}

	if action.ID == "" {
		action.ID = "action-" + strings.ToLower(action.ActionCode)
	}

	return r.actions.save(action.ID, action)
}
