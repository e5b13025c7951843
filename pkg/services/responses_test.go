package services

import (
	"testing"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetResponseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dataType string
		raw      string
		check    func(t *testing.T, r *models.Response)
	}{
		{
			name:     "number",
			dataType: "currency",
			raw:      " 12.5 ",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.NumericValue)
				assert.InDelta(t, 12.5, *r.NumericValue, 0.0001)
				assert.Nil(t, r.TextValue)
			},
		},
		{
			name:     "unparseable number kept as text",
			dataType: "number",
			raw:      "twelve",
			check: func(t *testing.T, r *models.Response) {
				assert.Nil(t, r.NumericValue)
				require.NotNil(t, r.TextValue)
				assert.Equal(t, "twelve", *r.TextValue)
			},
		},
		{
			name:     "date",
			dataType: "date",
			raw:      "2026-03-01",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.DateValue)
				assert.True(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).Equal(*r.DateValue))
			},
		},
		{
			name:     "datetime",
			dataType: "datetime",
			raw:      "2026-03-01T10:30",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.DateValue)
				assert.True(t, time.Date(2026, time.March, 1, 10, 30, 0, 0, time.UTC).Equal(*r.DateValue))
			},
		},
		{
			name:     "checkbox on",
			dataType: "checkbox",
			raw:      "on",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.BooleanValue)
				assert.True(t, *r.BooleanValue)
			},
		},
		{
			name:     "checkbox no",
			dataType: "checkbox",
			raw:      "No",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.BooleanValue)
				assert.False(t, *r.BooleanValue)
			},
		},
		{
			name:     "text",
			dataType: "textarea",
			raw:      "all good",
			check: func(t *testing.T, r *models.Response) {
				require.NotNil(t, r.TextValue)
				assert.Equal(t, "all good", *r.TextValue)
			},
		},
		{
			name:     "empty clears every value",
			dataType: "number",
			raw:      "  ",
			check: func(t *testing.T, r *models.Response) {
				assert.Nil(t, r.NumericValue)
				assert.Nil(t, r.TextValue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			old := "stale"
			response := &models.Response{TextValue: &old}
			SetResponseValue(response, tt.dataType, tt.raw)
			tt.check(t, response)
		})
	}
}

func TestResponseString(t *testing.T) {
	t.Parallel()

	text := "hello"
	number := 42.0
	date := time.Date(2026, time.March, 1, 9, 5, 0, 0, time.UTC)
	checked := true

	tests := []struct {
		name     string
		response *models.Response
		dataType string
		want     string
	}{
		{name: "nil response", dataType: "text", want: ""},
		{name: "number", response: &models.Response{NumericValue: &number}, dataType: "number", want: "42"},
		{name: "date", response: &models.Response{DateValue: &date}, dataType: "date", want: "2026-03-01"},
		{name: "datetime", response: &models.Response{DateValue: &date}, dataType: "datetime", want: "2026-03-01T09:05"},
		{name: "time", response: &models.Response{DateValue: &date}, dataType: "time", want: "09:05"},
		{name: "checkbox", response: &models.Response{BooleanValue: &checked}, dataType: "checkbox", want: "true"},
		{name: "text fallback", response: &models.Response{TextValue: &text}, dataType: "number", want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResponseString(tt.response, tt.dataType))
		})
	}
}

func TestApplyOptionScore(t *testing.T) {
	t.Parallel()

	item := &models.Item{
		ItemName: "Shift",
		DataType: "radio",
		Options: []*models.Option{
			{ID: "opt-day", Value: "day", IsActive: true, ScoreValue: float64Ptr(3), ScoreWeight: float64Ptr(2)},
			{ID: "opt-night", Value: "night", IsActive: true},
		},
	}

	response := &models.Response{}
	applyOptionScore(response, item, "day")
	assert.Equal(t, "opt-day", response.SelectedOptionID)
	require.NotNil(t, response.WeightedScore)
	assert.InDelta(t, 6.0, *response.WeightedScore, 0.0001)

	applyOptionScore(response, item, "night")
	assert.Equal(t, "opt-night", response.SelectedOptionID)
	assert.Nil(t, response.SelectedScoreValue)
	assert.Nil(t, response.WeightedScore)

	applyOptionScore(response, item, "")
	assert.Empty(t, response.SelectedOptionID)
}

func TestValidateField(t *testing.T) {
	t.Parallel()

	item := &models.Item{ItemName: "Field"}

	tests := []struct {
		name       string
		value      string
		validation *models.ItemValidation
		want       string
	}{
		{name: "valid email", value: "ann@example.com", validation: &models.ItemValidation{ValidationType: "email"}},
		{name: "invalid email", value: "ann-at-example", validation: &models.ItemValidation{ValidationType: "email"}, want: "Field must be a valid email address."},
		{name: "valid phone", value: "+1 (555) 123-4567", validation: &models.ItemValidation{ValidationType: "phone"}},
		{name: "short phone", value: "12345", validation: &models.ItemValidation{ValidationType: "phone"}, want: "Field must be a valid phone number."},
		{name: "valid url", value: "https://example.com/report", validation: &models.ItemValidation{ValidationType: "url"}},
		{name: "ftp url", value: "ftp://example.com", validation: &models.ItemValidation{ValidationType: "URL"}, want: "Field must be a valid URL."},
		{name: "min length", value: "ab", validation: &models.ItemValidation{ValidationType: "minlength", MinLength: intPtr(3)}, want: "Field must be at least 3 characters."},
		{name: "max length", value: "abcd", validation: &models.ItemValidation{ValidationType: "maxlength", MaxLength: intPtr(3)}, want: "Field must be at most 3 characters."},
		{name: "min value", value: "2", validation: &models.ItemValidation{ValidationType: "min", MinValue: float64Ptr(5)}, want: "Field must be at least 5."},
		{name: "min value ignores text", value: "n/a", validation: &models.ItemValidation{ValidationType: "minvalue", MinValue: float64Ptr(5)}},
		{name: "max value", value: "7.5", validation: &models.ItemValidation{ValidationType: "maxvalue", MaxValue: float64Ptr(7)}, want: "Field must be at most 7."},
		{name: "inside range", value: "5", validation: &models.ItemValidation{ValidationType: "range", MinValue: float64Ptr(1), MaxValue: float64Ptr(10)}},
		{name: "outside range", value: "11", validation: &models.ItemValidation{ValidationType: "range", MinValue: float64Ptr(1), MaxValue: float64Ptr(10)}, want: "Field is out of range."},
		{name: "pattern mismatch", value: "abc", validation: &models.ItemValidation{ValidationType: "regex", RegexPattern: `^[A-Z]{3}$`, ErrorMessage: "Use three capitals"}, want: "Use three capitals"},
		{name: "pattern match", value: "ABC", validation: &models.ItemValidation{ValidationType: "pattern", RegexPattern: `^[A-Z]{3}$`}},
		{name: "invalid pattern skipped", value: "abc", validation: &models.ItemValidation{ValidationType: "regex", RegexPattern: `[`}},
		{name: "integer", value: "4.2", validation: &models.ItemValidation{ValidationType: "integer"}, want: "Field must be a whole number."},
		{name: "decimal", value: "4.2", validation: &models.ItemValidation{ValidationType: "decimal"}},
		{name: "not a number", value: "four", validation: &models.ItemValidation{ValidationType: "number"}, want: "Field must be a number."},
		{name: "unknown type", value: "x", validation: &models.ItemValidation{ValidationType: "checksum"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, validateField(tt.value, tt.validation, item))
		})
	}
}

func TestValidateConfigurations(t *testing.T) {
	t.Parallel()

	config := func(pairs ...string) []*models.ItemConfiguration {
		configs := make([]*models.ItemConfiguration, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			configs = append(configs, &models.ItemConfiguration{Key: pairs[i], Value: pairs[i+1]})
		}

		return configs
	}

	tests := []struct {
		name  string
		item  *models.Item
		value string
		want  []string
	}{
		{
			name:  "number above max",
			item:  &models.Item{ItemName: "Score", DataType: "number", Configurations: config("MinValue", "1", "maxvalue", "10")},
			value: "12",
			want:  []string{"Score must be at most 10."},
		},
		{
			name:  "rating outside scale",
			item:  &models.Item{ItemName: "Rating", DataType: "rating", Configurations: config("ratingmax", "5")},
			value: "6",
			want:  []string{"Rating must be between 1 and 5."},
		},
		{
			name:  "slider below min",
			item:  &models.Item{ItemName: "Level", DataType: "slider", Configurations: config("slidermin", "10")},
			value: "5",
			want:  []string{"Level must be at least 10."},
		},
		{
			name:  "text too short",
			item:  &models.Item{ItemName: "Summary", DataType: "textarea", Configurations: config("minlength", "10")},
			value: "short",
			want:  []string{"Summary must be at least 10 characters."},
		},
		{
			name:  "date after max",
			item:  &models.Item{ItemName: "Visit date", DataType: "date", Configurations: config("maxdate", "2026-12-31")},
			value: "2027-01-05",
			want:  []string{"Visit date must be on or before 2026-12-31."},
		},
		{
			name:  "time before min",
			item:  &models.Item{ItemName: "Start", DataType: "time", Configurations: config("mintime", "08:00")},
			value: "07:30",
			want:  []string{"Start must be at or after 08:00."},
		},
		{
			name:  "too many selections",
			item:  &models.Item{ItemName: "Areas", DataType: "multiselect", Configurations: config("maxselections", "2")},
			value: "north,south,east",
			want:  []string{"Areas allows at most 2 selection(s)."},
		},
		{
			name:  "image type",
			item:  &models.Item{ItemName: "Photo", DataType: "image", Configurations: config("allowedimagetypes", ".png,.jpg")},
			value: "cat.GIF",
			want:  []string{"Photo must be one of the following image types: .png,.jpg."},
		},
		{
			name:  "file type allowed",
			item:  &models.Item{ItemName: "Evidence", DataType: "fileupload", Configurations: config("allowedfiletypes", ".pdf, .docx")},
			value: "report.PDF",
		},
		{
			name: "inactive option",
			item: &models.Item{ItemName: "Shift", DataType: "dropdown", Options: []*models.Option{
				{Value: "day", IsActive: true},
				{Value: "night"},
			}},
			value: "night",
			want:  []string{"Shift has an invalid selection."},
		},
		{
			name:  "radio without options",
			item:  &models.Item{ItemName: "Shift", DataType: "radio"},
			value: "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, validateConfigurations(tt.value, tt.item))
		})
	}
}

func TestValidateResponses(t *testing.T) {
	t.Parallel()

	template := &models.FormTemplate{
		Sections: []*models.Section{
			{
				Name: "General",
				Items: []*models.Item{
					{ID: "headcount", ItemName: "Headcount", DataType: "number", IsRequired: true},
					{ID: "notes", ItemName: "Notes", DataType: "textarea", IsRequired: true},
					{
						ID:       "count",
						ItemName: "Count",
						DataType: "text",
						Validations: []*models.ItemValidation{
							{ValidationType: "minlength", MinLength: intPtr(5), ValidationOrder: 2, IsActive: true},
							{ValidationType: "integer", ValidationOrder: 1, IsActive: true},
							{ValidationType: "email", ValidationOrder: 3},
						},
					},
					{ID: "comments", ItemName: "Comments", DataType: "textarea"},
				},
			},
		},
	}

	result := ValidateResponses(template, map[string]string{
		"headcount": "12",
		"notes":     "  ",
		"count":     "ab",
	})

	assert.False(t, result.IsValid)
	assert.Equal(t, 4, result.TotalFields)
	assert.Equal(t, 2, result.ValidFields)
	assert.Equal(t, 2, result.InvalidFields)
	assert.Equal(t, []string{"Notes is required."}, result.Errors["field_notes"])
	assert.Equal(t, []string{"Count must be a whole number.", "Count must be at least 5 characters."}, result.Errors["field_count"])
	assert.NotContains(t, result.Errors, "field_headcount")

	result = ValidateResponses(template, map[string]string{"headcount": "12", "notes": "fine", "count": "12345"})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}
