/*
csv.go - Flat tabular export

One row per schedule stage, columns stage/percentage/value, in the stage
iteration order of the active preset. Values render with two decimal places;
percentages keep their exact decimal form.
*/
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders the schedule lines as a UTF-8 CSV table.
func CSV(schedule ScheduleMap) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"stage", "percentage", "value"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, line := range schedule {
		record := []string{
			line.Stage,
			line.Percentage.String(),
			line.Value.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write stage %q: %w", line.Stage, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
