package ingest

import (
	"pledgecli/pkg/contracts/domain"
)

// AccountAggregate is the running per-account accumulation for one file's
// parse pass. It is created lazily on the first row referencing an unseen
// account and owned exclusively by that pass until Combine copies it.
type AccountAggregate struct {
	AccountID   string
	YearAmounts map[int]float64 // fiscal year -> running sum
	Age         *int            // derived once from the first row seen; nil if underivable
	ZipCode     string          // last non-empty value seen wins
	FirstRow    int             // 1-indexed row of first sighting, for error attribution
}

// clone deep-copies the aggregate so Combine never aliases parser-owned state.
func (a *AccountAggregate) clone() *AccountAggregate {
	out := &AccountAggregate{
		AccountID:   a.AccountID,
		YearAmounts: make(map[int]float64, len(a.YearAmounts)),
		ZipCode:     a.ZipCode,
		FirstRow:    a.FirstRow,
	}
	for year, amount := range a.YearAmounts {
		out.YearAmounts[year] = amount
	}
	if a.Age != nil {
		age := *a.Age
		out.Age = &age
	}
	return out
}

// FileResult is the immutable output of one file's parse pass.
type FileResult struct {
	Aggregates   map[string]*AccountAggregate
	Errors       []domain.ParseError
	YearsFound   map[int]struct{}
	RowsAccepted int
	RowsSkipped  int // out-of-category rows, discarded without error
}

// Combined is the cross-file merge of all per-file results.
type Combined struct {
	Accounts map[string]*AccountAggregate // account id -> merged aggregate
	AllYears []int                        // distinct fiscal years, sorted descending
	Errors   []domain.ParseError          // per-file errors concatenated in input order
}

// MergePolicy controls which file's age and zip code survive when the same
// account appears in more than one uploaded file. Amounts are always summed
// regardless of policy.
type MergePolicy int

const (
	// FirstFileWins keeps age/zip from the first file that mentions the
	// account. This matches the documented ingestion behavior and is the
	// default.
	FirstFileWins MergePolicy = iota
	// LastFileWins overwrites age/zip with each later file's values when
	// that file actually carries them.
	LastFileWins
)

func (p MergePolicy) String() string {
	switch p {
	case FirstFileWins:
		return "first-file-wins"
	case LastFileWins:
		return "last-file-wins"
	default:
		return "unknown"
	}
}

// ParseMergePolicy maps a configuration string to a MergePolicy.
func ParseMergePolicy(s string) (MergePolicy, bool) {
	switch s {
	case "first-file-wins", "":
		return FirstFileWins, true
	case "last-file-wins":
		return LastFileWins, true
	default:
		return FirstFileWins, false
	}
}
