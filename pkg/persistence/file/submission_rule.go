package file

import (
	"context"
	"slices"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// SubmissionRuleRepository handles submission rule file operations.
type SubmissionRuleRepository struct {
	rules *collection[models.SubmissionRule]
}

// NewSubmissionRuleRepository creates a new submission rule repository.
func NewSubmissionRuleRepository(root string) *SubmissionRuleRepository {
	return &SubmissionRuleRepository{rules: newCollection[models.SubmissionRule](root, "submission_rules")}
}

func (r *SubmissionRuleRepository) GetAll(_ context.Context) ([]*models.SubmissionRule, error) {
	rules, err := r.rules.all()
	if err != nil {
		return nil, err
	}

	sortRules(rules)

	return rules, nil
}

// GetByTemplate returns the rules of a template, oldest first.
func (r *SubmissionRuleRepository) GetByTemplate(_ context.Context, templateID string) ([]*models.SubmissionRule, error) {
	rules, err := r.rules.filter(func(rule *models.SubmissionRule) bool {
		return rule.TemplateID == templateID
	})
	if err != nil {
		return nil, err
	}

	sortRules(rules)

	return rules, nil
}

func (r *SubmissionRuleRepository) GetByID(_ context.Context, id string) (*models.SubmissionRule, error) {
	return r.rules.get(id)
}

func (r *SubmissionRuleRepository) Save(_ context.Context, rule *models.SubmissionRule) error {
	if rule.ID == "" {
		id, err := newID("submission rule")
		if err != nil {
			return err
		}

		rule.ID = id
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	return r.rules.save(rule.ID, rule)
}

func (r *SubmissionRuleRepository) Delete(_ context.Context, id string) error {
	return r.rules.delete(id)
}

func sortRules(rules []*models.SubmissionRule) {
	slices.SortStableFunc(rules, func(a, b *models.SubmissionRule) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
