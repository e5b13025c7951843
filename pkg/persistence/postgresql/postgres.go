// Package postgresql provides PostgreSQL persistence implementation for templates, workflows and submissions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/formreport/pkg/persistence"
	"github.com/dukex/formreport/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db                 *sql.DB
	logger             *slog.Logger
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

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations on initialization
	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newPersistence(database, logger), nil
}

func newPersistence(database *sql.DB, logger *slog.Logger) *Persistence {
	return &Persistence{
		db:                 database,
		logger:             logger,
		categoryRepo:       NewCategoryRepository(database, logger),
		templateRepo:       NewTemplateRepository(database, logger),
		optionTemplateRepo: NewOptionTemplateRepository(database, logger),
		assignmentRepo:     NewAssignmentRepository(database, logger),
		workflowRepo:       NewWorkflowRepository(database, logger),
		actionRepo:         NewWorkflowActionRepository(database, logger),
		progressRepo:       NewProgressRepository(database, logger),
		ruleRepo:           NewSubmissionRuleRepository(database, logger),
		submissionRepo:     NewSubmissionRepository(database, logger),
		directoryRepo:      NewDirectoryRepository(database, logger),
	}
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) CategoryRepository() persistence.CategoryRepository {
	return p.categoryRepo
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return p.templateRepo
}

func (p *Persistence) OptionTemplateRepository() persistence.OptionTemplateRepository {
	return p.optionTemplateRepo
}

func (p *Persistence) AssignmentRepository() persistence.AssignmentRepository {
	return p.assignmentRepo
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) WorkflowActionRepository() persistence.WorkflowActionRepository {
	return p.actionRepo
}

func (p *Persistence) ProgressRepository() persistence.ProgressRepository {
	return p.progressRepo
}

func (p *Persistence) SubmissionRuleRepository() persistence.SubmissionRuleRepository {
	return p.ruleRepo
}

func (p *Persistence) SubmissionRepository() persistence.SubmissionRepository {
	return p.submissionRepo
}

func (p *Persistence) DirectoryRepository() persistence.DirectoryRepository {
	return p.directoryRepo
}
