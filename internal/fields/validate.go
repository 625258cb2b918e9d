package fields

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jifma-project/jifmactl/internal/record"
)

// ValidationGap reports draft fields that block submission. It is raised before any
// network call.
type ValidationGap struct {
	Kind    record.Kind
	Missing []string
	// Invalid maps field name to the reason its value was rejected
	Invalid map[string]string
}

func (e *ValidationGap) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		names := make([]string, 0, len(e.Invalid))
		for name := range e.Invalid {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, e.Invalid[name]))
		}
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

// Fields lists every field named by the gap
func (e *ValidationGap) Fields() []string {
	out := append([]string(nil), e.Missing...)
	for name := range e.Invalid {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks required fields and value formats of draft
func (r *Registry) Validate(kind record.Kind, draft map[string]string) error {
	_, err := r.Coerce(kind, draft)
	return err
}

// Coerce validates draft and converts it into the JSON payload sent to the API.
// Empty optional fields are left out of the payload.
func (r *Registry) Coerce(kind record.Kind, draft map[string]string) (map[string]any, error) {
	gap := &ValidationGap{Kind: kind, Invalid: map[string]string{}}
	payload := make(map[string]any)

	for _, f := range r.fields[kind] {
		raw := strings.TrimSpace(draft[f.Name])
		if raw == "" {
			if f.Required {
				gap.Missing = append(gap.Missing, f.Name)
			}
			continue
		}

		value, err := coerceValue(f, raw)
		if err != nil {
			gap.Invalid[f.Name] = err.Error()
			continue
		}
		payload[f.Name] = value
	}

	if len(gap.Missing) > 0 || len(gap.Invalid) > 0 {
		return nil, gap
	}
	return payload, nil
}

func coerceValue(f Field, raw string) (any, error) {
	switch f.Input {
	case InputNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Errorf("must be at least %d", *f.Min)
		}
		return n, nil
	case InputDateTime:
		ts, err := record.ParseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date-time (use YYYY-MM-DDTHH:MM)", raw)
		}
		return ts.String(), nil
	case InputSelect:
		if len(f.Choices) == 0 {
			return raw, nil
		}
		for _, c := range f.Choices {
			if strings.EqualFold(c, raw) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("must be one of %s", strings.Join(f.Choices, ", "))
	case InputURL:
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%q is not an absolute URL", raw)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// Values extracts the current field values of rec as draft strings
func (r *Registry) Values(rec record.Record) map[string]string {
	draft := make(map[string]string)
	encoded, err := json.Marshal(rec)
	if err != nil {
		return draft
	}
	var wire map[string]any
	if err := json.Unmarshal(encoded, &wire); err != nil {
		return draft
	}

	for _, f := range r.fields[rec.Kind()] {
		draft[f.Name] = formatValue(wire[f.Name])
	}
	return draft
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Option is one selectable entry of a reference field
type Option struct {
	Value record.ID
	Label string
}

// Options lists the selectable entries of field f drawn from the referenced collection
func Options(f Field, collection []record.Record) []Option {
	if f.Ref == nil {
		out := make([]Option, 0, len(f.Choices))
		for _, c := range f.Choices {
			out = append(out, Option{Value: record.ID(c), Label: c})
		}
		return out
	}

	out := make([]Option, 0, len(collection))
	for _, rec := range collection {
		if rec.Kind() != *f.Ref {
			continue
		}
		out = append(out, Option{Value: rec.RecordID(), Label: DisplayName(rec)})
	}
	return out
}

// DisplayName returns the label used for rec in option lists and tables
func DisplayName(rec record.Record) string {
	switch r := rec.(type) {
	case record.Team:
		return record.NameOr(r.Name)
	case record.Sport:
		return record.NameOr(r.Name)
	case record.NewsItem:
		return record.NameOr(r.Title)
	case record.Game:
		return r.Matchup()
	case record.MedalTally:
		return record.NameOr(r.TeamName)
	default:
		return record.Placeholder
	}
}
