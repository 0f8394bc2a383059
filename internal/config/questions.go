package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"alumnipulse/pkg/contracts/domain"
)

var questionValidator = newQuestionValidator()

func newQuestionValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names in validation errors, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// LoadQuestionSet reads and validates the question-set definition file.
// The file drives which survey columns the report renders and how.
func LoadQuestionSet(path string) (*domain.QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question set %s: %w", path, err)
	}

	return ParseQuestionSet(data)
}

// ParseQuestionSet decodes and validates a question-set definition.
func ParseQuestionSet(data []byte) (*domain.QuestionSet, error) {
	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse question set: %w", err)
	}

	if err := questionValidator.Struct(set); err != nil {
		return nil, fmt.Errorf("question set validation failed: %w", err)
	}

	seen := make(map[string]struct{}, len(set.Questions))
	for _, q := range set.Questions {
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id: %s", q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	return &set, nil
}
