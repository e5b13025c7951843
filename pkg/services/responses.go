package services

import (
	"cmp"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/go-playground/validator/v10"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	timeLayout     = "15:04"
	minPhoneLength = 7
)

var (
	fieldValidator = validator.New()
	phonePattern   = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)

	// Layouts tried, in order, when a raw value is parsed into a date.
	dateLayouts = []string{time.RFC3339, dateLayout, dateTimeLayout, "2006-01-02 15:04:05", timeLayout, "15:04:05"}
)

// fieldKind groups the data types that are parsed and validated the same way.
type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindDate
	kindDateTime
	kindTime
	kindCheckbox
	kindChoice
	kindMultiChoice
	kindFile
	kindImage
)

func kindOf(dataType string) fieldKind {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "number", "decimal", "currency", "percentage", "rating", "slider":
		return kindNumber
	case "date":
		return kindDate
	case "datetime":
		return kindDateTime
	case "time":
		return kindTime
	case "checkbox", "boolean":
		return kindCheckbox
	case "dropdown", "select", "radio":
		return kindChoice
	case "multiselect", "checkboxgroup":
		return kindMultiChoice
	case "file", "fileupload":
		return kindFile
	case "image":
		return kindImage
	default:
		return kindText
	}
}

func isTextual(dataType string) bool {
	switch strings.ToLower(dataType) {
	case "text", "textarea", "email", "phone", "url":
		return true
	}

	return false
}

// SetResponseValue stores raw into the typed column matching dataType.
// Values that fail to parse are kept as text.
func SetResponseValue(response *models.Response, dataType, raw string) {
	response.TextValue = nil
	response.NumericValue = nil
	response.DateValue = nil
	response.BooleanValue = nil

	value := strings.TrimSpace(raw)
	if value == "" {
		return
	}

	switch kindOf(dataType) {
	case kindNumber:
		number, err := strconv.ParseFloat(value, 64)
		if err == nil {
			response.NumericValue = &number
			return
		}
	case kindDate, kindDateTime, kindTime:
		date, ok := parseDate(value)
		if ok {
			response.DateValue = &date
			return
		}
	case kindCheckbox:
		checked, ok := parseCheckbox(value)
		if ok {
			response.BooleanValue = &checked
			return
		}
	}

	response.TextValue = &raw
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, value)
		if err == nil {
			return date, true
		}
	}

	return time.Time{}, false
}

func parseCheckbox(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "on", "yes", "1":
		return true, true
	case "off", "no", "0":
		return false, true
	}

	checked, err := strconv.ParseBool(value)

	return checked, err == nil
}

// ResponseString renders a stored response back into the string a form field would hold.
func ResponseString(response *models.Response, dataType string) string {
	if response == nil {
		return ""
	}

	switch kind := kindOf(dataType); {
	case kind == kindNumber && response.NumericValue != nil:
		return formatNumber(*response.NumericValue)
	case kind == kindDate && response.DateValue != nil:
		return response.DateValue.Format(dateLayout)
	case kind == kindDateTime && response.DateValue != nil:
		return response.DateValue.Format(dateTimeLayout)
	case kind == kindTime && response.DateValue != nil:
		return response.DateValue.Format(timeLayout)
	case kind == kindCheckbox && response.BooleanValue != nil:
		return strconv.FormatBool(*response.BooleanValue)
	}

	if response.TextValue != nil {
		return *response.TextValue
	}

	return ""
}

// ResponseValue returns the typed value of a response, or nil when it holds nothing.
func ResponseValue(response *models.Response) any {
	switch {
	case response == nil:
		return nil
	case response.NumericValue != nil:
		return *response.NumericValue
	case response.DateValue != nil:
		return *response.DateValue
	case response.BooleanValue != nil:
		return *response.BooleanValue
	case response.TextValue != nil:
		return *response.TextValue
	}

	return nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// applyOptionScore copies the score of the selected option onto the response.
func applyOptionScore(response *models.Response, item *models.Item, raw string) {
	response.SelectedOptionID = ""
	response.SelectedScoreValue = nil
	response.SelectedScoreWeight = nil
	response.WeightedScore = nil

	value := strings.TrimSpace(raw)
	if value == "" {
		return
	}

	for _, option := range item.Options {
		if option.Value != value {
			continue
		}

		response.SelectedOptionID = option.ID
		response.SelectedScoreValue = option.ScoreValue
		response.SelectedScoreWeight = option.ScoreWeight

		if option.ScoreValue != nil {
			weight := 1.0
			if option.ScoreWeight != nil {
				weight = *option.ScoreWeight
			}

			weighted := *option.ScoreValue * weight
			response.WeightedScore = &weighted
		}

		return
	}
}

// ResponseValidation is the outcome of validating a set of responses against a template.
type ResponseValidation struct {
	IsValid       bool                `json:"is_valid"`
	Errors        map[string][]string `json:"errors"`
	TotalFields   int                 `json:"total_fields"`
	ValidFields   int                 `json:"valid_fields"`
	InvalidFields int                 `json:"invalid_fields"`
}

// FieldKey is the key a field's errors are reported under.
func FieldKey(itemID string) string {
	return "field_" + itemID
}

// ValidateResponses checks values, keyed by item ID, against every item of the template.
func ValidateResponses(template *models.FormTemplate, values map[string]string) *ResponseValidation {
	result := &ResponseValidation{IsValid: true, Errors: make(map[string][]string)}

	for _, item := range template.Items() {
		result.TotalFields++

		errs := validateItem(item, values[item.ID])
		if len(errs) == 0 {
			result.ValidFields++
			continue
		}

		result.Errors[FieldKey(item.ID)] = errs
		result.InvalidFields++
		result.IsValid = false
	}

	return result
}

func validateItem(item *models.Item, raw string) []string {
	var errs []string

	value := strings.TrimSpace(raw)
	if value == "" {
		if item.IsRequired {
			errs = append(errs, item.ItemName+" is required.")
		}

		return errs
	}

	validations := make([]*models.ItemValidation, 0, len(item.Validations))
	for _, validation := range item.Validations {
		if validation.IsActive {
			validations = append(validations, validation)
		}
	}

	slices.SortStableFunc(validations, func(a, b *models.ItemValidation) int {
		return cmp.Compare(a.ValidationOrder, b.ValidationOrder)
	})

	for _, validation := range validations {
		if msg := validateField(value, validation, item); msg != "" {
			errs = append(errs, msg)
		}
	}

	return append(errs, validateConfigurations(value, item)...)
}

// validateField applies one validation rule. It returns the error message, or "" when the value passes.
func validateField(value string, validation *models.ItemValidation, item *models.Item) string {
	failed, fallback := checkValidation(value, validation, item.ItemName)
	if !failed {
		return ""
	}

	if validation.ErrorMessage != "" {
		return validation.ErrorMessage
	}

	return fallback
}

func checkValidation(value string, v *models.ItemValidation, name string) (bool, string) {
	number, numErr := strconv.ParseFloat(value, 64)
	isNumber := numErr == nil

	switch strings.ToLower(v.ValidationType) {
	case "required":
		return strings.TrimSpace(value) == "", name + " is required."
	case "email":
		return fieldValidator.Var(value, "required,email") != nil, name + " must be a valid email address."
	case "phone":
		return !phonePattern.MatchString(value) || len(value) < minPhoneLength, name + " must be a valid phone number."
	case "url":
		return fieldValidator.Var(value, "required,http_url") != nil, name + " must be a valid URL."
	case "minlength":
		if v.MinLength != nil {
			return len([]rune(value)) < *v.MinLength, fmt.Sprintf("%s must be at least %d characters.", name, *v.MinLength)
		}
	case "maxlength":
		if v.MaxLength != nil {
			return len([]rune(value)) > *v.MaxLength, fmt.Sprintf("%s must be at most %d characters.", name, *v.MaxLength)
		}
	case "min", "minvalue":
		if v.MinValue != nil && isNumber {
			return number < *v.MinValue, fmt.Sprintf("%s must be at least %s.", name, formatNumber(*v.MinValue))
		}
	case "max", "maxvalue":
		if v.MaxValue != nil && isNumber {
			return number > *v.MaxValue, fmt.Sprintf("%s must be at most %s.", name, formatNumber(*v.MaxValue))
		}
	case "range":
		if isNumber {
			out := (v.MinValue != nil && number < *v.MinValue) || (v.MaxValue != nil && number > *v.MaxValue)
			return out, name + " is out of range."
		}
	case "regex", "pattern":
		if v.RegexPattern == "" {
			return false, ""
		}

		pattern, err := regexp.Compile(v.RegexPattern)
		if err != nil {
			return false, ""
		}

		return !pattern.MatchString(value), name + " has an invalid format."
	case "integer":
		_, err := strconv.Atoi(value)
		return err != nil, name + " must be a whole number."
	case "decimal", "number":
		return !isNumber, name + " must be a number."
	}

	return false, ""
}

func validateConfigurations(value string, item *models.Item) []string {
	var errs []string

	name := item.ItemName
	kind := kindOf(item.DataType)

	configFloat := func(key string) (float64, bool) {
		raw, ok := item.Config(key)
		if !ok {
			return 0, false
		}

		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)

		return parsed, err == nil
	}

	configInt := func(key string) (int, bool) {
		raw, ok := item.Config(key)
		if !ok {
			return 0, false
		}

		parsed, err := strconv.Atoi(strings.TrimSpace(raw))

		return parsed, err == nil
	}

	switch kind {
	case kindNumber:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			break
		}

		if minValue, ok := configFloat("minvalue"); ok && number < minValue {
			errs = append(errs, fmt.Sprintf("%s must be at least %s.", name, formatNumber(minValue)))
		}

		if maxValue, ok := configFloat("maxvalue"); ok && number > maxValue {
			errs = append(errs, fmt.Sprintf("%s must be at most %s.", name, formatNumber(maxValue)))
		}

		switch strings.ToLower(item.DataType) {
		case "rating":
			if ratingMax, ok := configInt("ratingmax"); ok && (number < 1 || number > float64(ratingMax)) {
				errs = append(errs, fmt.Sprintf("%s must be between 1 and %d.", name, ratingMax))
			}
		case "slider":
			if sliderMin, ok := configFloat("slidermin"); ok && number < sliderMin {
				errs = append(errs, fmt.Sprintf("%s must be at least %s.", name, formatNumber(sliderMin)))
			}

			if sliderMax, ok := configFloat("slidermax"); ok && number > sliderMax {
				errs = append(errs, fmt.Sprintf("%s must be at most %s.", name, formatNumber(sliderMax)))
			}
		}
	case kindDate, kindDateTime:
		date, ok := parseDate(value)
		if !ok {
			break
		}

		day := truncateDay(date)

		if raw, ok := item.Config("mindate"); ok {
			if minDate, ok := parseDate(strings.TrimSpace(raw)); ok && day.Before(truncateDay(minDate)) {
				errs = append(errs, fmt.Sprintf("%s must be on or after %s.", name, minDate.Format(dateLayout)))
			}
		}

		if raw, ok := item.Config("maxdate"); ok {
			if maxDate, ok := parseDate(strings.TrimSpace(raw)); ok && day.After(truncateDay(maxDate)) {
				errs = append(errs, fmt.Sprintf("%s must be on or before %s.", name, maxDate.Format(dateLayout)))
			}
		}
	case kindTime:
		clock, ok := parseClock(value)
		if !ok {
			break
		}

		if raw, ok := item.Config("mintime"); ok {
			if minTime, ok := parseClock(strings.TrimSpace(raw)); ok && clock < minTime {
				errs = append(errs, fmt.Sprintf("%s must be at or after %s.", name, formatClock(minTime)))
			}
		}

		if raw, ok := item.Config("maxtime"); ok {
			if maxTime, ok := parseClock(strings.TrimSpace(raw)); ok && clock > maxTime {
				errs = append(errs, fmt.Sprintf("%s must be at or before %s.", name, formatClock(maxTime)))
			}
		}
	case kindMultiChoice:
		selected := len(strings.Split(value, ","))

		if minSelections, ok := configInt("minselections"); ok && selected < minSelections {
			errs = append(errs, fmt.Sprintf("%s requires at least %d selection(s).", name, minSelections))
		}

		if maxSelections, ok := configInt("maxselections"); ok && selected > maxSelections {
			errs = append(errs, fmt.Sprintf("%s allows at most %d selection(s).", name, maxSelections))
		}
	case kindFile, kindImage:
		if allowed, ok := item.Config("allowedfiletypes"); ok && !extensionAllowed(value, allowed) {
			errs = append(errs, fmt.Sprintf("%s must be one of the following types: %s.", name, allowed))
		}

		if kind == kindImage {
			if allowed, ok := item.Config("allowedimagetypes"); ok && !extensionAllowed(value, allowed) {
				errs = append(errs, fmt.Sprintf("%s must be one of the following image types: %s.", name, allowed))
			}
		}
	case kindChoice:
		if len(item.Options) > 0 && !hasActiveOption(item, value) {
			errs = append(errs, name+" has an invalid selection.")
		}
	}

	if isTextual(item.DataType) {
		length := len([]rune(value))

		if minLength, ok := configInt("minlength"); ok && length < minLength {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters.", name, minLength))
		}

		if maxLength, ok := configInt("maxlength"); ok && length > maxLength {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters.", name, maxLength))
		}
	}

	return errs
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseClock returns the minutes since midnight of an "HH:MM" or "HH:MM:SS" value.
func parseClock(value string) (int, bool) {
	for _, layout := range []string{timeLayout, "15:04:05"} {
		clock, err := time.Parse(layout, value)
		if err == nil {
			return clock.Hour()*60 + clock.Minute(), true
		}
	}

	return 0, false
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// extensionAllowed reports whether the file name's extension is in the comma-separated allowed list.
// Names without an extension and empty lists pass.
func extensionAllowed(fileName, allowed string) bool {
	extension := strings.ToLower(filepath.Ext(fileName))
	if extension == "" || strings.TrimSpace(allowed) == "" {
		return true
	}

	for candidate := range strings.SplitSeq(allowed, ",") {
		if strings.ToLower(strings.TrimSpace(candidate)) == extension {
			return true
		}
	}

	return false
}

func hasActiveOption(item *models.Item, value string) bool {
	for _, option := range item.Options {
		if option.IsActive && option.Value == value {
			return true
		}
	}

	return false
}
