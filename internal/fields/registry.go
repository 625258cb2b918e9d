// Package fields describes the editable fields of each record kind
package fields

import (
	"github.com/jifma-project/jifmactl/internal/record"
)

// Input is the kind of form control used for a field
type Input int

const (
	InputText Input = iota
	InputTextArea
	InputNumber
	InputSelect
	InputDateTime
	InputURL
)

func (i Input) String() string {
	switch i {
	case InputText:
		return "text"
	case InputTextArea:
		return "textarea"
	case InputNumber:
		return "number"
	case InputSelect:
		return "select"
	case InputDateTime:
		return "datetime"
	case InputURL:
		return "url"
	default:
		return "unknown"
	}
}

// Field describes one editable field of a record kind
type Field struct {
	Name     string
	Label    string
	Input    Input
	Required bool
	Default  string
	// Ref names the collection supplying the selectable options of a reference field
	Ref *record.Kind
	// Choices are the fixed options of a non-reference select
	Choices []string
	// Min is the lower bound of a number input
	Min *int
	// Locked fields cannot change once the record exists
	Locked bool
}

// IsReference reports whether the field's options come from another collection
func (f Field) IsReference() bool {
	return f.Ref != nil
}

func ref(k record.Kind) *record.Kind { return &k }

func zero() *int { n := 0; return &n }

// defaultFields contains the form layout of each kind, in display order
var defaultFields = map[record.Kind][]Field{
	record.KindNews: {
		{Name: "title", Label: "Title", Input: InputText, Required: true},
		{Name: "content", Label: "Content", Input: InputTextArea, Required: true},
		{Name: "author", Label: "Author", Input: InputText, Required: true},
		{Name: "image_url", Label: "Image URL", Input: InputURL},
	},
	record.KindTeam: {
		{Name: "name", Label: "Name", Input: InputText, Required: true},
		{Name: "city", Label: "City", Input: InputText, Required: true},
	},
	record.KindSport: {
		{Name: "name", Label: "Name", Input: InputText, Required: true},
		{Name: "type", Label: "Type", Input: InputSelect, Required: true,
			Choices: []string{string(record.SportIndividual), string(record.SportCollective)}},
		{Name: "description", Label: "Description", Input: InputTextArea},
	},
	record.KindGame: {
		{Name: "sport_id", Label: "Sport", Input: InputSelect, Required: true, Ref: ref(record.KindSport)},
		{Name: "team_a_id", Label: "Team A", Input: InputSelect, Required: true, Ref: ref(record.KindTeam)},
		{Name: "team_b_id", Label: "Team B", Input: InputSelect, Required: true, Ref: ref(record.KindTeam)},
		{Name: "game_date", Label: "Date", Input: InputDateTime, Required: true},
		{Name: "location", Label: "Location", Input: InputText, Required: true},
		{Name: "status", Label: "Status", Input: InputSelect, Default: string(record.StatusScheduled),
			Choices: []string{string(record.StatusScheduled), string(record.StatusInProgress), string(record.StatusFinished)}},
		{Name: "score_a", Label: "Score A", Input: InputNumber, Min: zero()},
		{Name: "score_b", Label: "Score B", Input: InputNumber, Min: zero()},
	},
	record.KindMedal: {
		{Name: "team_id", Label: "Team", Input: InputSelect, Required: true, Ref: ref(record.KindTeam), Locked: true},
		{Name: "gold_medals", Label: "Gold", Input: InputNumber, Required: true, Default: "0", Min: zero()},
		{Name: "silver_medals", Label: "Silver", Input: InputNumber, Required: true, Default: "0", Min: zero()},
		{Name: "bronze_medals", Label: "Bronze", Input: InputNumber, Required: true, Default: "0", Min: zero()},
	},
}

// Registry holds the field descriptors of every kind
type Registry struct {
	fields map[record.Kind][]Field
}

// NewRegistry creates a registry with the default descriptors
func NewRegistry() *Registry {
	return &Registry{fields: defaultFields}
}

// Fields returns the descriptors of kind in display order
func (r *Registry) Fields(kind record.Kind) []Field {
	fs := r.fields[kind]
	out := make([]Field, len(fs))
	copy(out, fs)
	return out
}

// Field looks up a single descriptor
func (r *Registry) Field(kind record.Kind, name string) (Field, bool) {
	for _, f := range r.fields[kind] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the initial draft for a new record of kind
func (r *Registry) Defaults(kind record.Kind) map[string]string {
	draft := make(map[string]string, len(r.fields[kind]))
	for _, f := range r.fields[kind] {
		draft[f.Name] = f.Default
	}
	return draft
}

// References returns the kinds a form of kind needs to offer options from
func (r *Registry) References(kind record.Kind) []record.Kind {
	var out []record.Kind
	seen := make(map[record.Kind]bool)
	for _, f := range r.fields[kind] {
		if f.Ref != nil && !seen[*f.Ref] {
			seen[*f.Ref] = true
			out = append(out, *f.Ref)
		}
	}
	return out
}
