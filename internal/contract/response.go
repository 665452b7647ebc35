package contract

import (
	"fmt"
	"strconv"
	"strings"
)

// neutralConfidence is the prior used when a response carries no
// self-reported confidence: the model answered but did not rate itself,
// which is weaker than full confidence but stronger than none.
const neutralConfidence = 0.5

// Response is a typed view over a structured model response. Field absence
// is an explicit state returned by the accessors, not an attribute-existence
// check on a dynamic object.
type Response struct {
	fields map[string]any
}

// String returns the named field rendered as a string, reporting whether it
// was present and non-null.
func (r *Response) String(name string) (string, bool) {
	v, ok := r.fields[name]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return fmt.Sprint(s), true
	}
}

// Bool normalizes a boolean-like output. Models produce these as free-form
// text; only a case-insensitive exact match of the word "true" is truthy.
// Anything else, including an absent field, "yes", or "false", is falsy.
func (r *Response) Bool(name string) bool {
	s, ok := r.String(name)
	return ok && strings.EqualFold(strings.TrimSpace(s), "true")
}

// Confidence parses the "confidence" field. An absent field defaults to the
// neutral prior; a present but unparseable value is an error so the caller's
// invocation wrapper can degrade the whole extraction.
func (r *Response) Confidence() (float64, error) {
	s, ok := r.String("confidence")
	if !ok {
		return neutralConfidence, nil
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing confidence %q: %w", s, err)
	}
	return c, nil
}

// Ratio parses the named field as an optional float. The literal string
// "None", the empty string, and an absent field all mean the ratio is not
// stated, which is distinct from a stated ratio of zero.
func (r *Response) Ratio(name string) (*float64, error) {
	s, ok := r.String(name)
	if !ok {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing ratio %q: %w", s, err)
	}
	return &v, nil
}

// Page returns the model-reported page number if present, parseable, and at
// least 1, otherwise the fallback (the top retrieval result's starting page).
func (r *Response) Page(fallback int) int {
	s, ok := r.String("page_number")
	if !ok {
		return fallback
	}
	// Models sometimes return pages as floats ("8.0").
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		if p := int(f); p >= 1 {
			return p
		}
	}
	return fallback
}
