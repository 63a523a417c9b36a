// Package slotfill implements a small state machine that accumulates
// named fields over multiple turns before producing a final result.
package slotfill

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldKind describes how a field's raw value is interpreted.
type FieldKind int

const (
	// KindText accepts any free-text token.
	KindText FieldKind = iota
	// KindNumber is parsed as a float at finalization time.
	KindNumber
	// KindEnum accepts one of a fixed set of keywords.
	KindEnum
)

// Field declares one required slot.
type Field struct {
	Name string
	Kind FieldKind
	// Enum lists the accepted values for KindEnum fields.
	Enum []string
	// Prompt renders the question for this field. It receives the data
	// collected so far, so prompts can reference earlier answers.
	Prompt func(data map[string]any) string
}

// Finalizer computes the terminal result once every field is present.
// Returning an error signals that a collected value failed to parse as
// its declared type; Err unwraps to a *FieldError naming the field.
type Finalizer func(data map[string]any) (string, error)

// FieldError reports a field whose value could not be used at finalization.
type FieldError struct {
	Field string
	Value any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q has unusable value %v", e.Field, e.Value)
}

// Handler collects required fields across turns. It is pure with respect
// to its own data: Collect merges partial input and returns either a
// prompt for the next missing field or the terminal result.
type Handler struct {
	fields   []Field
	finalize Finalizer
	data     map[string]any
	complete bool
}

// New creates a handler with the given field order and finalizer. Seed
// values (may be nil) pre-fill fields, e.g. a commodity name captured
// from the initiating message.
func New(fields []Field, finalize Finalizer, seed map[string]any) *Handler {
	h := &Handler{
		fields:   fields,
		finalize: finalize,
		data:     make(map[string]any, len(fields)),
	}
	for k, v := range seed {
		if v != nil {
			h.data[k] = v
		}
	}
	return h
}

// Collect merges non-nil values into the accumulated data, then returns
// a prompt naming the first still-missing field, or the final result
// once all fields are present. Re-supplying a filled field overwrites it
// (last-write-wins). A finalization parse failure resets only the
// offending field and returns a re-entry prompt.
func (h *Handler) Collect(partial map[string]any) string {
	for k, v := range partial {
		if v != nil {
			h.data[k] = v
		}
	}

	if missing := h.nextMissing(); missing != nil {
		return missing.Prompt(h.data)
	}

	out, err := h.finalize(h.data)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			delete(h.data, fe.Field)
			return fmt.Sprintf("I couldn't complete the analysis: %v doesn't work for %s. Please re-enter %s.",
				fe.Value, humanize(fe.Field), humanize(fe.Field))
		}
		return fmt.Sprintf("I couldn't complete the analysis: %v. Please start over.", err)
	}
	h.complete = true
	return out
}

// IsComplete reports whether the handler has produced its terminal result.
func (h *Handler) IsComplete() bool { return h.complete }

// NextField returns the first still-missing field, or nil when all
// fields are satisfied.
func (h *Handler) NextField() *Field { return h.nextMissing() }

// Data returns the accumulated field values.
func (h *Handler) Data() map[string]any { return h.data }

func (h *Handler) nextMissing() *Field {
	for i := range h.fields {
		if _, ok := h.data[h.fields[i].Name]; !ok {
			return &h.fields[i]
		}
	}
	return nil
}

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// ExtractValue pulls this field's value out of a raw user reply using
// kind-specific heuristics: numbers take the first decimal found, enums
// the first matching keyword, text the first whitespace-delimited token.
// Returns nil when nothing usable is found.
func (f *Field) ExtractValue(text string) any {
	switch f.Kind {
	case KindNumber:
		if m := numberPattern.FindString(text); m != "" {
			v, err := strconv.ParseFloat(m, 64)
			if err == nil {
				return v
			}
		}
	case KindEnum:
		for _, lvl := range f.Enum {
			if strings.Contains(text, lvl) {
				return lvl
			}
		}
	default:
		if words := strings.Fields(text); len(words) > 0 {
			return words[0]
		}
	}
	return nil
}

// AsNumber coerces a collected value to float64. Values recorded as text
// (e.g. via the schema-mediated tool path) are parsed here, not at
// collection time.
func AsNumber(data map[string]any, field string) (float64, error) {
	v, ok := data[field]
	if !ok {
		return 0, &FieldError{Field: field, Value: nil}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, &FieldError{Field: field, Value: v}
		}
		return f, nil
	default:
		return 0, &FieldError{Field: field, Value: v}
	}
}

// AsText coerces a collected value to a string.
func AsText(data map[string]any, field string) string {
	if v, ok := data[field]; ok {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return ""
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
