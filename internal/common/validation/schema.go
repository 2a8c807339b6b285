package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/applicant.schema.json
var applicantSchemaJSON []byte

var (
	applicantSchemaOnce sync.Once
	applicantSchema     *gojsonschema.Schema
	applicantSchemaErr  error
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func compiledApplicantSchema() (*gojsonschema.Schema, error) {
	applicantSchemaOnce.Do(func() {
		applicantSchema, applicantSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(applicantSchemaJSON))
	})
	return applicantSchema, applicantSchemaErr
}

// ValidateApplicant checks a decoded applicant document (for example job
// variables) against the applicant schema: types, GPA and MCAT total bounds,
// and non-negative hours and counts. MCAT section scores are left to the
// normalizer, which clamps them with a warning.
func ValidateApplicant(doc interface{}) (*ValidationResult, error) {
	schema, err := compiledApplicantSchema()
	if err != nil {
		return nil, fmt.Errorf("load applicant schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return fromResult(result), nil
}

// ValidateApplicantJSON is ValidateApplicant for a raw JSON body.
func ValidateApplicantJSON(body []byte) (*ValidationResult, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	schema, err := compiledApplicantSchema()
	if err != nil {
		return nil, fmt.Errorf("load applicant schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return fromResult(result), nil
}

func fromResult(result *gojsonschema.Result) *ValidationResult {
	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    errorCode(desc.Type()),
		})
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

func errorCode(kind string) string {
	switch kind {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "string_gte":
		return "STRING_TOO_SHORT"
	case "number_gte", "number_lte":
		return "VALUE_OUT_OF_RANGE"
	default:
		return strings.ToUpper(kind)
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
