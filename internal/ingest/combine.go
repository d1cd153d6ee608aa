package ingest

import (
	"fmt"
	"sort"
)

// Combine merges independently parsed file results into one account-level
// view. Year totals for the same (account, year) pair are summed; age and
// zip follow the merge policy. The per-file results are read-only: every
// aggregate is deep-copied before merging.
//
// The two-fiscal-year minimum is enforced here, not per file, so two
// single-year uploads that together cover two years combine successfully.
func Combine(results []*FileResult, policy MergePolicy) (*Combined, error) {
	combined := &Combined{Accounts: make(map[string]*AccountAggregate)}
	years := make(map[int]struct{})

	for _, fr := range results {
		if fr == nil {
			continue
		}
		combined.Errors = append(combined.Errors, fr.Errors...)
		for year := range fr.YearsFound {
			years[year] = struct{}{}
		}
		for id, agg := range fr.Aggregates {
			existing, ok := combined.Accounts[id]
			if !ok {
				combined.Accounts[id] = agg.clone()
				continue
			}
			for year, amount := range agg.YearAmounts {
				existing.YearAmounts[year] += amount
			}
			if policy == LastFileWins {
				if agg.Age != nil {
					age := *agg.Age
					existing.Age = &age
				}
				if agg.ZipCode != "" {
					existing.ZipCode = agg.ZipCode
				}
			}
		}
	}

	combined.AllYears = make([]int, 0, len(years))
	for year := range years {
		combined.AllYears = append(combined.AllYears, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(combined.AllYears)))

	if len(combined.AllYears) < 2 {
		return nil, fmt.Errorf("Only %d fiscal year(s) found; at least 2 are required for year-over-year comparison",
			len(combined.AllYears))
	}
	return combined, nil
}
