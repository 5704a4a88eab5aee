package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"run_id", "legislator_id", "ticker", "direction", "size", "size_midpoint",
	"disclosure_date", "flagged", "committee_id", "strength", "reason",
}

// CSVJournal writes decisions to a flat CSV file, one row per decision.
type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

// NewCSV creates the decisions file and writes the header.
func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVJournal{w: w, f: f}, nil
}

func (j *CSVJournal) RecordDecision(d Decision) error {
	if err := j.w.Write([]string{
		d.RunID,
		d.LegislatorID,
		d.Ticker,
		d.Direction,
		d.Size,
		d.SizeMidpoint.String(),
		d.DisclosureDate.Format(time.DateOnly),
		strconv.FormatBool(d.Flagged),
		d.CommitteeID,
		strconv.FormatFloat(d.Strength, 'f', 6, 64),
		d.Reason,
	}); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
