package services

import (
	"context"
	"fmt"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// Scoring aggregates the option scores stored on responses.
type Scoring struct {
	persistence persistence.Persistence
}

func NewScoring(persistence persistence.Persistence) *Scoring {
	return &Scoring{persistence: persistence}
}

// SectionScore is the item-weighted mean of the scored responses of a section, or nil when nothing is scored.
func SectionScore(submission *models.Submission, section *models.Section) *float64 {
	score, _ := sectionScore(submission, section)
	return score
}

func sectionScore(submission *models.Submission, section *models.Section) (*float64, int) {
	var sum, weights float64

	count := 0

	for _, item := range section.Items {
		response := submission.Response(item.ID)
		if response == nil || response.WeightedScore == nil {
			continue
		}

		sum += *response.WeightedScore * item.Weight
		weights += item.Weight
		count++
	}

	if weights == 0 {
		return nil, count
	}

	score := sum / weights

	return &score, count
}

// OverallScore weights the section scores of a submission by section weight.
func OverallScore(submission *models.Submission, template *models.FormTemplate) *float64 {
	var sum, weights float64

	for _, section := range template.Sections {
		score := SectionScore(submission, section)
		if score == nil {
			continue
		}

		sum += *score * section.Weight
		weights += section.Weight
	}

	if weights == 0 {
		return nil
	}

	overall := sum / weights

	return &overall
}

// SectionBreakdown is the score of one section of a submission.
type SectionBreakdown struct {
	SectionID   string   `json:"section_id"`
	SectionName string   `json:"section_name"`
	Score       *float64 `json:"score,omitempty"`
	Weight      float64  `json:"weight"`
	ItemCount   int      `json:"item_count"`
}

// ScoreBreakdown is the per-section and overall score of a submission.
type ScoreBreakdown struct {
	SubmissionID string              `json:"submission_id"`
	TemplateID   string              `json:"template_id"`
	TemplateName string              `json:"template_name"`
	OverallScore *float64            `json:"overall_score,omitempty"`
	Sections     []*SectionBreakdown `json:"sections"`
}

func (s *Scoring) Breakdown(ctx context.Context, submissionID string) (*ScoreBreakdown, error) {
	submission, err := s.persistence.SubmissionRepository().GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	template, err := s.template(ctx, submission.TemplateID)
	if err != nil {
		return nil, err
	}

	breakdown := &ScoreBreakdown{
		SubmissionID: submission.ID,
		TemplateID:   template.ID,
		TemplateName: template.TemplateName,
		OverallScore: OverallScore(submission, template),
		Sections:     make([]*SectionBreakdown, 0, len(template.Sections)),
	}

	for _, section := range template.Sections {
		score, count := sectionScore(submission, section)
		breakdown.Sections = append(breakdown.Sections, &SectionBreakdown{
			SectionID:   section.ID,
			SectionName: section.Name,
			Score:       score,
			Weight:      section.Weight,
			ItemCount:   count,
		})
	}

	return breakdown, nil
}

// FieldAverage is the mean score of one item over the submitted submissions of a template.
func (s *Scoring) FieldAverage(ctx context.Context, templateID, itemID string) (*float64, error) {
	submissions, err := s.submitted(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var scores []float64

	for _, submission := range submissions {
		response := submission.Response(itemID)
		if response != nil && response.WeightedScore != nil {
			scores = append(scores, *response.WeightedScore)
		}
	}

	return mean(scores), nil
}

// TemplateAverage is the mean overall score of the submitted submissions of a template.
func (s *Scoring) TemplateAverage(ctx context.Context, templateID string) (*float64, error) {
	template, err := s.template(ctx, templateID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submitted(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var scores []float64

	for _, submission := range submissions {
		if overall := OverallScore(submission, template); overall != nil {
			scores = append(scores, *overall)
		}
	}

	return mean(scores), nil
}

// FieldPerformance summarizes the scores an item received.
type FieldPerformance struct {
	ItemID      string   `json:"item_id"`
	ItemName    string   `json:"item_name"`
	SectionName string   `json:"section_name"`
	Weight      float64  `json:"weight"`
	Count       int      `json:"count"`
	Average     *float64 `json:"average,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
}

// FieldPerformance reports every scored item of a template in template order.
func (s *Scoring) FieldPerformance(ctx context.Context, templateID string) ([]*FieldPerformance, error) {
	template, err := s.template(ctx, templateID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submitted(ctx, templateID)
	if err != nil {
		return nil, err
	}

	performance := make([]*FieldPerformance, 0)

	for _, section := range template.Sections {
		for _, item := range section.Items {
			if !isScored(item) {
				continue
			}

			field := &FieldPerformance{
				ItemID:      item.ID,
				ItemName:    item.ItemName,
				SectionName: section.Name,
				Weight:      item.Weight,
			}

			var scores []float64

			for _, submission := range submissions {
				response := submission.Response(item.ID)
				if response == nil || response.WeightedScore == nil {
					continue
				}

				score := *response.WeightedScore
				scores = append(scores, score)

				if field.Min == nil || score < *field.Min {
					field.Min = &score
				}

				if field.Max == nil || score > *field.Max {
					field.Max = &score
				}
			}

			field.Count = len(scores)
			field.Average = mean(scores)
			performance = append(performance, field)
		}
	}

	return performance, nil
}

func isScored(item *models.Item) bool {
	for _, option := range item.Options {
		if option.ScoreValue != nil {
			return true
		}
	}

	return false
}

func (s *Scoring) submitted(ctx context.Context, templateID string) ([]*models.Submission, error) {
	submissions, err := s.persistence.SubmissionRepository().Find(ctx, persistence.SubmissionFilter{TemplateID: templateID})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	submitted := make([]*models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.Status.IsSubmitted() {
			submitted = append(submitted, submission)
		}
	}

	return submitted, nil
}

func (s *Scoring) template(ctx context.Context, id string) (*models.FormTemplate, error) {
	template, err := s.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	avg := sum / float64(len(values))

	return &avg
}
