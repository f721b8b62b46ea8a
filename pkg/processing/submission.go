package processing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// Request body keys.
const (
	KeyFormID          = "formId"
	KeyApplicationData = "applicationData"
	KeyFields          = "fields"
)

type submissionBody struct {
	FormID          string           `json:"formId"`
	ApplicationData *applicationData `json:"applicationData"`
}

type applicationData struct {
	Fields []submittedField `json:"fields"`
}

// submittedField mirrors one entry of applicationData.fields. Type and
// Mandatory are advisory; the form schema is authoritative.
type submittedField struct {
	Name      string          `json:"name"`
	Value     json.RawMessage `json:"value"`
	Type      string          `json:"type,omitempty"`
	Mandatory json.RawMessage `json:"mandatory,omitempty"`
}

// ParseSubmission decodes a request body into a Submission. Malformed bodies
// are reported as KindInvalidRequest errors.
func ParseSubmission(raw []byte) (schema.Submission, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return schema.Submission{}, Errorf(KindInvalidRequest, "request body is empty")
	}

	var body submissionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.Submission{}, NewError(KindInvalidRequest, "request body is not valid JSON", err)
	}

	formID := strings.TrimSpace(body.FormID)
	if formID == "" {
		return schema.Submission{}, Errorf(KindInvalidRequest, "%s is required", KeyFormID)
	}
	if body.ApplicationData == nil {
		return schema.Submission{}, Errorf(KindInvalidRequest, "%s is required", KeyApplicationData)
	}

	values := make(map[string]string, len(body.ApplicationData.Fields))
	for i, field := range body.ApplicationData.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return schema.Submission{}, Errorf(KindInvalidRequest, "%s[%d] has no name", KeyFields, i)
		}
		if _, dup := values[name]; dup {
			return schema.Submission{}, Errorf(KindInvalidRequest, "field %q submitted more than once", name)
		}
		value, err := scalarText(field.Value)
		if err != nil {
			return schema.Submission{}, Errorf(KindInvalidRequest, "field %q: %s", name, err)
		}
		values[name] = value
	}

	return schema.Submission{FormID: formID, Values: values}, nil
}

// scalarText renders a JSON scalar as text: strings are unquoted, numbers and
// booleans keep their literal form and null becomes empty.
func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("value must be a string, number or boolean")
	default:
		return string(trimmed), nil
	}
}
