package services

import (
	"context"
	"log/slog"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/google/uuid"
)

// Services bundles every service wired against one persistence backend.
type Services struct {
	persistence persistence.Persistence

	Directory       *Directory
	Categories      *Category
	Templates       *Template
	OptionTemplates *OptionTemplate
	Assignments     *Assignment
	Workflows       *Workflow
	Engine          *Engine
	Rules           *SubmissionRule
	Submissions     *Submission
	Scoring         *Scoring
	Statistics      *Statistics
}

// New wires the services. publisher and m may be nil.
func New(p persistence.Persistence, publisher eventbus.EventPublisher, m *metrics.Metrics, logger *slog.Logger) *Services {
	directory := NewDirectory(p)
	assignments := NewAssignment(p, directory, publisher, logger)
	rules := NewSubmissionRule(p)
	engine := NewEngine(p, directory, publisher, m, logger)

	return &Services{
		persistence:     p,
		Directory:       directory,
		Categories:      NewCategory(p),
		Templates:       NewTemplate(p),
		OptionTemplates: NewOptionTemplate(p),
		Assignments:     assignments,
		Workflows:       NewWorkflow(p),
		Engine:          engine,
		Rules:           rules,
		Submissions:     NewSubmission(p, assignments, rules, engine, publisher, m, logger),
		Scoring:         NewScoring(p),
		Statistics:      NewStatistics(p),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Services) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// notifier publishes domain events. Publishing failures are logged and never fail the operation.
type notifier struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func (n notifier) publish(ctx context.Context, key string, event eventbus.Event) {
	if n.publisher == nil {
		return
	}

	err := n.publisher.Publish(ctx, key, event)
	if err != nil && n.logger != nil {
		n.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
