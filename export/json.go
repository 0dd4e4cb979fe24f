/*
json.go - Structured JSON export

The canonical interchange format. HTML escaping is disabled so project and
client names survive byte-identical; the schedule renders as an ordered
{stage: value} object.
*/
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// JSON renders the document as indented UTF-8 JSON.
func JSON(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode proposal: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseJSON decodes a previously exported document. The schedule comes back
// in its original stage order; only the per-stage percentages, which the
// JSON schedule does not carry, are absent.
func ParseJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode proposal: %w", err)
	}
	return doc, nil
}

// MarshalJSON renders the schedule as a {stage: value} object in line order.
func (s ScheduleMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, line := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(line.Stage)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(line.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the {stage: value} object back in its original key
// order. Percentages are not part of the JSON schedule, so re-parsed lines
// carry only stage and value.
func (s *ScheduleMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	var lines ScheduleMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		stage, ok := tok.(string)
		if !ok {
			continue
		}
		var value decimal.Decimal
		if err := dec.Decode(&value); err != nil {
			return err
		}
		lines = append(lines, ScheduleLine{Stage: stage, Value: value})
	}
	*s = lines
	return nil
}
