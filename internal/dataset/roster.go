package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gavel-labs/gavel/internal/domain"
)

const (
	colFirmTicker   = "ticker"
	colFirmSector   = "sector"
	colFirmIndustry = "industry"
)

var firmColumns = []string{colFirmTicker, colFirmSector, colFirmIndustry}

// LoadRoster reads the committee membership YAML and the firm metadata CSV
// into one run roster. The membership file maps a legislator's name to the
// committees they sit on:
//
//	Jane Doe:
//	  - Committee on Armed Services
//	  - Select Committee on Intelligence
//
// Committee descriptions are normalized (boilerplate stripped, lowercased)
// and deduplicated across legislators; committee ids are assigned in sorted
// description order so runs over the same inputs always agree on ids.
func LoadRoster(membershipPath, firmsPath string, logger *zap.Logger) (*domain.Roster, error) {
	raw, err := os.ReadFile(membershipPath)
	if err != nil {
		return nil, errors.Wrap(err, "read committee membership")
	}

	var membership map[string][]string
	if err := yaml.Unmarshal(raw, &membership); err != nil {
		return nil, errors.Wrap(err, "parse committee membership")
	}

	normalized := make(map[string][]string, len(membership))
	descriptions := make(map[string]struct{})
	for name, committees := range membership {
		seen := make(map[string]struct{}, len(committees))
		for _, committee := range committees {
			text := NormalizeCommitteeText(committee)
			if len(text) < 2 {
				logger.Debug("dropping unusable committee entry",
					zap.String("legislator", name), zap.String("raw", committee))
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			normalized[name] = append(normalized[name], text)
			descriptions[text] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(descriptions))
	for text := range descriptions {
		sorted = append(sorted, text)
	}
	sort.Strings(sorted)

	committees := make([]domain.Committee, 0, len(sorted))
	idByDescription := make(map[string]string, len(sorted))
	for i, text := range sorted {
		id := committeeID(i)
		idByDescription[text] = id
		committees = append(committees, domain.Committee{ID: id, Description: text})
	}

	legislators := make([]domain.Legislator, 0, len(normalized))
	for name, texts := range normalized {
		ids := make([]string, 0, len(texts))
		for _, text := range texts {
			ids = append(ids, idByDescription[text])
		}
		sort.Strings(ids)
		legislators = append(legislators, domain.Legislator{ID: name, Name: name, CommitteeIDs: ids})
	}

	firms, err := loadFirms(firmsPath, logger)
	if err != nil {
		return nil, err
	}

	roster, err := domain.NewRoster(legislators, committees, firms)
	if err != nil {
		return nil, errors.Wrap(err, "build roster")
	}

	logger.Info("loaded roster",
		zap.Int("legislators", len(legislators)),
		zap.Int("committees", len(committees)),
		zap.Int("firms", len(firms)))
	return roster, nil
}

func committeeID(i int) string {
	return fmt.Sprintf("C%03d", i+1)
}

func loadFirms(path string, logger *zap.Logger) ([]domain.Firm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open firms file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read firms header")
	}
	cols, err := indexColumns(header, firmColumns)
	if err != nil {
		return nil, errors.Wrap(err, "firms header")
	}

	var firms []domain.Firm
	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping unreadable firm row", zap.Int("line", line), zap.Error(err))
			continue
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		ticker := CleanTicker(field(colFirmTicker))
		if ticker == "" {
			logger.Debug("dropping firm row without ticker", zap.Int("line", line))
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		// prefer the narrow industry label, fall back to the sector
		industry := field(colFirmIndustry)
		if industry == "" {
			industry = field(colFirmSector)
		}
		firms = append(firms, domain.Firm{Ticker: ticker, Industry: strings.ToLower(industry)})
	}

	return firms, nil
}

var (
	bracketedRe  = regexp.MustCompile(`[\(\[][^\)\]]*[\)\]]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// committee name boilerplate to strip, longest phrases first so the short
// forms never clip a longer one mid-phrase
var committeeBoilerplate = []string{
	"united states house of representatives select committee on the",
	"joint committee on",
	"senate committee on",
	"house committee on",
	"select committee on",
	"subcommittee on",
	"committee on",
	"subcommittee",
	"committee",
	"senate",
	"house",
}

// NormalizeCommitteeText reduces a scraped committee name to its subject
// matter: bracketed qualifiers, punctuation and chamber boilerplate go,
// casing and runs of whitespace are collapsed.
func NormalizeCommitteeText(raw string) string {
	text := strings.ToLower(bracketedRe.ReplaceAllString(raw, ""))

	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, text)

	for _, phrase := range committeeBoilerplate {
		text = strings.ReplaceAll(text, phrase, " ")
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
