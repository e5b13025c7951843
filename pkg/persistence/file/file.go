// Package file provides file-based persistence implementation for templates, workflows and submissions.
package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/formreport/pkg/persistence"
	"github.com/google/uuid"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root               string
	categoryRepo       *CategoryRepository
	templateRepo       *TemplateRepository
	optionTemplateRepo *OptionTemplateRepository
	assignmentRepo     *AssignmentRepository
	workflowRepo       *WorkflowRepository
	actionRepo         *WorkflowActionRepository
	progressRepo       *ProgressRepository
	ruleRepo           *SubmissionRuleRepository
	submissionRepo     *SubmissionRepository
	directoryRepo      *DirectoryRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:               cleanRoot,
		categoryRepo:       NewCategoryRepository(cleanRoot),
		templateRepo:       NewTemplateRepository(cleanRoot),
		optionTemplateRepo: NewOptionTemplateRepository(cleanRoot),
		assignmentRepo:     NewAssignmentRepository(cleanRoot),
		workflowRepo:       NewWorkflowRepository(cleanRoot),
		actionRepo:         NewWorkflowActionRepository(cleanRoot),
		progressRepo:       NewProgressRepository(cleanRoot),
		ruleRepo:           NewSubmissionRuleRepository(cleanRoot),
		submissionRepo:     NewSubmissionRepository(cleanRoot),
		directoryRepo:      NewDirectoryRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) CategoryRepository() persistence.CategoryRepository {
	return fp.categoryRepo
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository {
	return fp.templateRepo
}

func (fp *Persistence) OptionTemplateRepository() persistence.OptionTemplateRepository {
	return fp.optionTemplateRepo
}

func (fp *Persistence) AssignmentRepository() persistence.AssignmentRepository {
	return fp.assignmentRepo
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) WorkflowActionRepository() persistence.WorkflowActionRepository {
	return fp.actionRepo
}

func (fp *Persistence) ProgressRepository() persistence.ProgressRepository {
	return fp.progressRepo
}

func (fp *Persistence) SubmissionRuleRepository() persistence.SubmissionRuleRepository {
	return fp.ruleRepo
}

func (fp *Persistence) SubmissionRepository() persistence.SubmissionRepository {
	return fp.submissionRepo
}

func (fp *Persistence) DirectoryRepository() persistence.DirectoryRepository {
	return fp.directoryRepo
}

func newID(entity string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s ID: %w", entity, err)
	}

	return id.String(), nil
}
