// Package params decodes loosely-keyed request parameters into typed intake
// requests. Callers send keys in whatever convention their tooling favors;
// "subAppellation", "sub_appellation" and "Sub Appellation" all land on the
// same field.
package params

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/vine/pkg/intake"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeIntake builds an intake request from a raw parameter map. Unknown
// keys are ignored; recognized keys are matched case-insensitively across
// camelCase, snake_case and spaced forms.
func DecodeIntake(input map[string]any) (intake.Request, error) {
	values := make(map[string]string, len(input))
	for k, v := range input {
		values[canonicalKey(k)] = toString(v)
	}

	req := intake.Request{
		Name:           values["name"],
		Color:          values["color"],
		Country:        values["country"],
		Region:         values["region"],
		Appellation:    values["appellation"],
		SubAppellation: values["subappellation"],
		GrapeVariety:   values["grapevariety"],
	}

	if err := validate.Struct(req); err != nil {
		return intake.Request{}, errors.Wrap(err, "invalid intake request")
	}
	return req, nil
}

// canonicalKey folds a parameter key to lowercase with separators removed.
func canonicalKey(key string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(key)))
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%v", val)
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
