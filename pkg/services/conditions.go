package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var conditionRuleSchema = map[string]any{
	"type":     "object",
	"required": []any{"operator"},
	"properties": map[string]any{
		"itemId":   map[string]any{"type": []any{"string", "integer"}},
		"field":    map[string]any{"type": "string"},
		"operator": map[string]any{"type": "string", "minLength": 1},
	},
}

// conditionalLogicSchema describes item show/hide rules, e.g.
// {"action": "show", "rules": [{"itemId": "item-1", "operator": "equals", "value": "Yes"}]}.
var conditionalLogicSchema = map[string]any{
	"type":     "object",
	"required": []any{"action", "rules"},
	"properties": map[string]any{
		"action": map[string]any{"enum": []any{"show", "hide", "enable", "disable", "require"}},
		"logic":  map[string]any{"enum": []any{"and", "or", "AND", "OR"}},
		"rules":  map[string]any{"type": "array", "minItems": 1, "items": conditionRuleSchema},
	},
}

// stepConditionSchema describes when a workflow step applies.
var stepConditionSchema = map[string]any{
	"type":     "object",
	"required": []any{"rules"},
	"properties": map[string]any{
		"logic": map[string]any{"enum": []any{"and", "or", "AND", "OR"}},
		"rules": map[string]any{"type": "array", "items": conditionRuleSchema},
	},
}

var autoApproveSchema = map[string]any{
	"type":     "object",
	"required": []any{"field", "operator", "value"},
	"properties": map[string]any{
		"field":    map[string]any{"type": "string", "minLength": 1},
		"operator": map[string]any{"enum": []any{"<", "<=", ">", ">=", "==", "!="}},
		"value":    map[string]any{"type": "number"},
	},
}

// AutoApproveCondition is a numeric comparison against one response, e.g. {"field": "amount", "operator": "<", "value": 1000}.
type AutoApproveCondition struct {
	Field    string  `json:"field"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// Holds reports whether value satisfies the condition. Unknown operators never hold.
func (c AutoApproveCondition) Holds(value float64) bool {
	switch c.Operator {
	case "<":
		return value < c.Value
	case "<=":
		return value <= c.Value
	case ">":
		return value > c.Value
	case ">=":
		return value >= c.Value
	case "==":
		return value == c.Value
	case "!=":
		return value != c.Value
	default:
		return false
	}
}

// ValidateConditionalLogic checks an item's conditional logic JSON. Empty logic is valid.
func ValidateConditionalLogic(raw string) error {
	return validateCondition("conditional logic", conditionalLogicSchema, raw)
}

// ValidateStepCondition checks a workflow step's condition logic JSON. Empty logic is valid.
func ValidateStepCondition(raw string) error {
	return validateCondition("step condition", stepConditionSchema, raw)
}

// ValidateAutoApproveCondition checks a workflow step's auto-approve condition JSON. Empty is valid.
func ValidateAutoApproveCondition(raw string) error {
	return validateCondition("auto-approve condition", autoApproveSchema, raw)
}

// ParseAutoApproveCondition validates and decodes an auto-approve condition.
func ParseAutoApproveCondition(raw string) (*AutoApproveCondition, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	err := ValidateAutoApproveCondition(raw)
	if err != nil {
		return nil, err
	}

	var condition AutoApproveCondition

	err = json.Unmarshal([]byte(raw), &condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}

	return &condition, nil
}

func validateCondition(kind string, schema map[string]any, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewStringLoader(raw))
	if err != nil {
		return NewValidationError("validateCondition", "INVALID_CONDITION",
			fmt.Sprintf("%s is not valid JSON: %v", kind, err), ErrInvalidCondition)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return NewValidationError("validateCondition", "INVALID_CONDITION",
			fmt.Sprintf("%s is invalid: %s", kind, strings.Join(problems, "; ")), ErrInvalidCondition)
	}

	return nil
}
