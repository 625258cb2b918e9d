package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList decodes a JSON array of records of the given kind
func DecodeList(kind Kind, data []byte) ([]Record, error) {
	switch kind {
	case KindNews:
		return decodeList[NewsItem](data)
	case KindGame:
		return decodeList[Game](data)
	case KindTeam:
		return decodeList[Team](data)
	case KindSport:
		return decodeList[Sport](data)
	case KindMedal:
		return decodeList[MedalTally](data)
	default:
		return nil, fmt.Errorf("decoding list: unknown kind %d", kind)
	}
}

// DecodeOne decodes a single record. The admin endpoints wrap the record in an envelope
// such as {"message": "...", "game": {...}}; both forms are accepted.
func DecodeOne(kind Kind, data []byte) (Record, error) {
	payload := unwrapEnvelope(kind, data)
	switch kind {
	case KindNews:
		return decodeOne[NewsItem](payload)
	case KindGame:
		return decodeOne[Game](payload)
	case KindTeam:
		return decodeOne[Team](payload)
	case KindSport:
		return decodeOne[Sport](payload)
	case KindMedal:
		return decodeOne[MedalTally](payload)
	default:
		return nil, fmt.Errorf("decoding record: unknown kind %d", kind)
	}
}

func decodeList[T Record](data []byte) ([]Record, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out, nil
}

func decodeOne[T Record](data []byte) (Record, error) {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return item, nil
}

// envelopeKeys are the wrapper keys used by the admin endpoints per kind
var envelopeKeys = map[Kind][]string{
	KindNews:  {"news"},
	KindGame:  {"game"},
	KindTeam:  {"team"},
	KindSport: {"sport"},
	KindMedal: {"medal_standing", "medal", "standing"},
}

func unwrapEnvelope(kind Kind, data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return data
	}
	if _, ok := env[kind.IDField()]; ok {
		return data
	}
	for _, key := range envelopeKeys[kind] {
		if inner, ok := env[key]; ok && len(inner) > 0 && inner[0] == '{' {
			return inner
		}
	}
	return data
}
