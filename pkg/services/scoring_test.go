package services

import (
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredResponse(itemID string, score float64) *models.Response {
	return &models.Response{ItemID: itemID, SelectedScoreValue: float64Ptr(score), WeightedScore: float64Ptr(score)}
}

func TestSectionScore(t *testing.T) {
	t.Parallel()

	section := &models.Section{
		Weight: 1,
		Items: []*models.Item{
			{ID: "a", Weight: 2},
			{ID: "b", Weight: 1},
			{ID: "c", Weight: 5},
		},
	}

	submission := &models.Submission{Responses: []*models.Response{
		scoredResponse("a", 6),
		scoredResponse("b", 3),
		{ItemID: "c", TextValue: new(string)},
	}}

	score := SectionScore(submission, section)
	require.NotNil(t, score)
	assert.InDelta(t, 5.0, *score, 0.0001)

	assert.Nil(t, SectionScore(&models.Submission{}, section))
}

func TestOverallScore(t *testing.T) {
	t.Parallel()

	template := &models.FormTemplate{Sections: []*models.Section{
		{Weight: 1, Items: []*models.Item{{ID: "a", Weight: 1}}},
		{Weight: 3, Items: []*models.Item{{ID: "b", Weight: 1}}},
		{Weight: 10, Items: []*models.Item{{ID: "unanswered", Weight: 1}}},
	}}

	submission := &models.Submission{Responses: []*models.Response{scoredResponse("a", 5), scoredResponse("b", 1)}}

	overall := OverallScore(submission, template)
	require.NotNil(t, overall)
	assert.InDelta(t, 2.0, *overall, 0.0001)

	assert.Nil(t, OverallScore(&models.Submission{}, template))
}

func TestScoring_Aggregates(t *testing.T) {
	s, p := newTestServices(t)
	ctx := t.Context()

	template := createOpenTemplate(t, s, nil)
	_, _, shift := itemIDs(template)

	submitted := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	save := func(status models.SubmissionStatus, score float64) *models.Submission {
		submission := &models.Submission{
			TemplateID:    template.ID,
			Status:        status,
			SubmittedBy:   "u-ann",
			SubmittedDate: &submitted,
			Responses:     []*models.Response{scoredResponse(shift, score)},
		}
		require.NoError(t, p.SubmissionRepository().Save(ctx, submission))

		return submission
	}

	first := save(models.SubmissionApproved, 6)
	save(models.SubmissionSubmitted, 1)
	save(models.SubmissionDraft, 100)

	average, err := s.Scoring.FieldAverage(ctx, template.ID, shift)
	require.NoError(t, err)
	require.NotNil(t, average)
	assert.InDelta(t, 3.5, *average, 0.0001)

	templateAverage, err := s.Scoring.TemplateAverage(ctx, template.ID)
	require.NoError(t, err)
	require.NotNil(t, templateAverage)
	assert.InDelta(t, 3.5, *templateAverage, 0.0001)

	performance, err := s.Scoring.FieldPerformance(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, performance, 1)
	assert.Equal(t, "Shift", performance[0].ItemName)
	assert.Equal(t, 2, performance[0].Count)
	assert.InDelta(t, 1.0, *performance[0].Min, 0.0001)
	assert.InDelta(t, 6.0, *performance[0].Max, 0.0001)

	breakdown, err := s.Scoring.Breakdown(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, breakdown.OverallScore)
	assert.InDelta(t, 6.0, *breakdown.OverallScore, 0.0001)
	require.Len(t, breakdown.Sections, 1)
	assert.Equal(t, "General", breakdown.Sections[0].SectionName)
	assert.Equal(t, 1, breakdown.Sections[0].ItemCount)

	_, err = s.Scoring.Breakdown(ctx, "missing")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	empty, err := s.Scoring.FieldAverage(ctx, template.ID, "unknown-item")
	require.NoError(t, err)
	assert.Nil(t, empty)
}
