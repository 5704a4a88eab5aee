package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	run_id TEXT NOT NULL,
	legislator_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	size TEXT NOT NULL,
	size_midpoint TEXT NOT NULL,
	disclosure_date DATETIME NOT NULL,
	flagged BOOLEAN NOT NULL,
	committee_id TEXT NOT NULL,
	strength REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
CREATE INDEX IF NOT EXISTS idx_decisions_ticker ON decisions(ticker);
`

// SQLiteJournal persists decisions in a SQLite database so multiple runs can
// be kept side by side and queried.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database and ensures the schema exists.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordDecision(d Decision) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(run_id, legislator_id, ticker, direction, size, size_midpoint, disclosure_date, flagged, committee_id, strength, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.LegislatorID, d.Ticker, d.Direction, d.Size, d.SizeMidpoint,
		d.DisclosureDate, d.Flagged, d.CommitteeID, d.Strength, d.Reason,
	)
	return err
}

// ListDecisionsByRun returns all decisions of one run ordered by disclosure
// date.
func (j *SQLiteJournal) ListDecisionsByRun(runID string) ([]Decision, error) {
	rows, err := j.db.Query(`
		SELECT run_id, legislator_id, ticker, direction, size, size_midpoint, disclosure_date, flagged, committee_id, strength, reason
		FROM decisions WHERE run_id = ? ORDER BY disclosure_date, ticker`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		var disclosed time.Time
		if err := rows.Scan(&d.RunID, &d.LegislatorID, &d.Ticker, &d.Direction, &d.Size,
			&d.SizeMidpoint, &disclosed, &d.Flagged, &d.CommitteeID, &d.Strength, &d.Reason); err != nil {
			return nil, err
		}
		d.DisclosureDate = disclosed
		out = append(out, d)
	}

	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
