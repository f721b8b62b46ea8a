package schema

// Submission is a parsed inbound request: raw values keyed by field name.
// Scalar JSON values have already been rendered as text.
type Submission struct {
	FormID string
	Values map[string]string
}

// CanonicalSubmission carries normalized values for fields known to the form
// schema. Unknown fields are not present.
type CanonicalSubmission struct {
	FormID string
	Values map[string]string
}

// Value returns the value for name and whether it was submitted.
func (c CanonicalSubmission) Value(name string) (string, bool) {
	value, ok := c.Values[name]
	return value, ok
}

// CloneValues returns a copy of the canonical values.
func (c CanonicalSubmission) CloneValues() map[string]string {
	out := make(map[string]string, len(c.Values))
	for k, v := range c.Values {
		out[k] = v
	}
	return out
}
