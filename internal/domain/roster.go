package domain

import (
	"sort"

	"github.com/pkg/errors"
)

// Committee a congressional committee with its subject-matter description.
type Committee struct {
	// ID stable identifier, unique within a run.
	ID string
	// Description free-text subject matter ("armed services", "energy and
	// commerce"). May be empty for committees the scraper could not resolve.
	Description string
}

// Legislator a member of congress with a static snapshot of committee seats.
// Membership changes over time; a backtest run works off one snapshot.
type Legislator struct {
	// ID stable identifier, unique within a run.
	ID string
	// Name display name as it appears in the disclosure feed.
	Name string
	// CommitteeIDs the committees this legislator sits on.
	CommitteeIDs []string
}

// Firm a listed company keyed by ticker.
type Firm struct {
	// Ticker exchange symbol.
	Ticker string
	// Industry free-text industry/sector description. May be empty when the
	// metadata scrape failed for this ticker.
	Industry string
}

// Roster read-only input universe for a run: who trades, which committees
// they sit on and what the traded firms do.
type Roster struct {
	legislators map[string]Legislator
	committees  map[string]Committee
	firms       map[string]Firm
}

// NewRoster builds a roster from loaded inputs. Legislators referencing an
// unknown committee are rejected so a typo in the membership file surfaces
// immediately instead of silently producing zero matches.
func NewRoster(legislators []Legislator, committees []Committee, firms []Firm) (*Roster, error) {
	r := &Roster{
		legislators: make(map[string]Legislator, len(legislators)),
		committees:  make(map[string]Committee, len(committees)),
		firms:       make(map[string]Firm, len(firms)),
	}

	for _, c := range committees {
		if c.ID == "" {
			return nil, errors.New("committee with empty id")
		}
		r.committees[c.ID] = c
	}
	for _, l := range legislators {
		if l.ID == "" {
			return nil, errors.New("legislator with empty id")
		}
		for _, cid := range l.CommitteeIDs {
			if _, ok := r.committees[cid]; !ok {
				return nil, errors.Errorf("legislator %s references unknown committee %s", l.ID, cid)
			}
		}
		r.legislators[l.ID] = l
	}
	for _, f := range firms {
		if f.Ticker == "" {
			return nil, errors.New("firm with empty ticker")
		}
		r.firms[f.Ticker] = f
	}

	return r, nil
}

// Legislator looks up a legislator by id.
func (r *Roster) Legislator(id string) (Legislator, bool) {
	l, ok := r.legislators[id]
	return l, ok
}

// Committee looks up a committee by id.
func (r *Roster) Committee(id string) (Committee, bool) {
	c, ok := r.committees[id]
	return c, ok
}

// Firm looks up a firm by ticker.
func (r *Roster) Firm(ticker string) (Firm, bool) {
	f, ok := r.firms[ticker]
	return f, ok
}

// Committees returns all committees ordered by id.
func (r *Roster) Committees() []Committee {
	out := make([]Committee, 0, len(r.committees))
	for _, c := range r.committees {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Firms returns all firms ordered by ticker.
func (r *Roster) Firms() []Firm {
	out := make([]Firm, 0, len(r.firms))
	for _, f := range r.firms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
