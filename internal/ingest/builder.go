package ingest

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"pledgecli/pkg/contracts/domain"
)

// rowValidate enforces the ComparisonRow schema tags as the final gate
// before a row leaves the pipeline.
var rowValidate = validator.New(validator.WithRequiredStructEnabled())

// BuildRows derives the final comparison rows from a combined aggregate.
// Current is the most recent fiscal year observed, prior the second most
// recent; an account with no entry for either year contributes zero for it.
//
// Two account-level failures surface here: an age that could never be
// derived (deferred from the row fold), and a negative aggregate for either
// selected year. Both exclude the account and append one error; neither is
// clamped or silently dropped. Output is sorted by account id.
func BuildRows(c *Combined) ([]domain.ComparisonRow, []domain.ParseError) {
	if c == nil || len(c.AllYears) < 2 {
		return nil, nil
	}
	current, prior := c.AllYears[0], c.AllYears[1]

	ids := make([]string, 0, len(c.Accounts))
	for id := range c.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []domain.ComparisonRow
	var errs []domain.ParseError
	for _, id := range ids {
		agg := c.Accounts[id]

		if agg.Age == nil {
			errs = append(errs, domain.ParseError{
				Row:     agg.FirstRow,
				Message: fmt.Sprintf("invalid or missing birthdate for account %s", id),
			})
			continue
		}

		row := domain.ComparisonRow{
			AccountID:     id,
			Age:           *agg.Age,
			PledgeCurrent: agg.YearAmounts[current],
			PledgePrior:   agg.YearAmounts[prior],
			ZipCode:       agg.ZipCode,
		}

		if row.PledgeCurrent < 0 || row.PledgePrior < 0 {
			errs = append(errs, domain.ParseError{
				Row:     agg.FirstRow,
				Message: fmt.Sprintf("negative aggregate amount for account %s", id),
			})
			continue
		}

		if err := rowValidate.Struct(row); err != nil {
			errs = append(errs, domain.ParseError{
				Row:     agg.FirstRow,
				Message: fmt.Sprintf("comparison row for account %s failed validation: %v", id, err),
			})
			continue
		}

		rows = append(rows, row)
	}
	return rows, errs
}

// CurrentPrior returns the selected comparison years, or false when fewer
// than two are available.
func (c *Combined) CurrentPrior() (current, prior int, ok bool) {
	if c == nil || len(c.AllYears) < 2 {
		return 0, 0, false
	}
	return c.AllYears[0], c.AllYears[1], true
}
