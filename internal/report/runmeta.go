package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"dataflow/internal/table"
)

// TimestampLayout renders UTC instants with microseconds and an explicit
// "+00:00" offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// RunMeta is the summary record written next to the pipeline outputs.
type RunMeta struct {
	RunID            string  `json:"run_id"`
	TimestampUTC     string  `json:"timestamp_utc"`
	RowsOut          int     `json:"rows_out"`
	MissingCreatedAt int     `json:"missing_created_at"`
	CountryMatchRate float64 `json:"country_match_rate"`
}

// NewRunMeta summarises the analytics table: its row count, the nulls in
// timeCol and the non-null fraction of matchCol (0 for an empty table).
func NewRunMeta(analytics table.Table, timeCol, matchCol string, now time.Time) (RunMeta, error) {
	tc, ok := analytics.Column(timeCol)
	if !ok {
		return RunMeta{}, fmt.Errorf("report: run meta: column %q not found", timeCol)
	}
	mc, ok := analytics.Column(matchCol)
	if !ok {
		return RunMeta{}, fmt.Errorf("report: run meta: column %q not found", matchCol)
	}

	m := RunMeta{
		RunID:        uuid.NewString(),
		TimestampUTC: now.UTC().Format(TimestampLayout),
		RowsOut:      analytics.NumRows(),
	}
	matched := 0
	for i := 0; i < analytics.NumRows(); i++ {
		if tc.IsNull(i) {
			m.MissingCreatedAt++
		}
		if !mc.IsNull(i) {
			matched++
		}
	}
	if m.RowsOut > 0 {
		m.CountryMatchRate = float64(matched) / float64(m.RowsOut)
	}
	return m, nil
}

// Encode writes m as indented JSON.
func (m RunMeta) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("report: encode run meta: %w", err)
	}
	return nil
}
