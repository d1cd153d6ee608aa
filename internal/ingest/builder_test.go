package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRows_SelectsTwoMostRecentYears(t *testing.T) {
	combined, err := Combine([]*FileResult{
		fileResult(account("A1", 45, "02139", map[int]float64{2023: 100, 2024: 400, 2025: 800})),
	}, FirstFileWins)
	require.NoError(t, err)

	rows, errs := BuildRows(combined)
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.InDelta(t, 800.0, rows[0].PledgeCurrent, 1e-9)
	assert.InDelta(t, 400.0, rows[0].PledgePrior, 1e-9)
}

func TestBuildRows_MissingYearDefaultsToZero(t *testing.T) {
	combined, err := Combine([]*FileResult{
		fileResult(account("A1", 45, "", map[int]float64{2025: 500})),
		fileResult(account("A2", 50, "", map[int]float64{2024: 300})),
	}, FirstFileWins)
	require.NoError(t, err)

	rows, errs := BuildRows(combined)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, "A1", rows[0].AccountID)
	assert.InDelta(t, 500.0, rows[0].PledgeCurrent, 1e-9)
	assert.InDelta(t, 0.0, rows[0].PledgePrior, 1e-9)

	assert.Equal(t, "A2", rows[1].AccountID)
	assert.InDelta(t, 0.0, rows[1].PledgeCurrent, 1e-9)
	assert.InDelta(t, 300.0, rows[1].PledgePrior, 1e-9)
}

func TestBuildRows_MissingAgeExcludesAccount(t *testing.T) {
	noAge := &AccountAggregate{
		AccountID:   "A1",
		YearAmounts: map[int]float64{2025: 500, 2024: 400},
		FirstRow:    7,
	}
	combined, err := Combine([]*FileResult{fileResult(noAge)}, FirstFileWins)
	require.NoError(t, err)

	rows, errs := BuildRows(combined)
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, 7, errs[0].Row)
	assert.Contains(t, errs[0].Message, "invalid or missing birthdate for account A1")
}

func TestBuildRows_NegativeAggregateRejected(t *testing.T) {
	combined, err := Combine([]*FileResult{
		fileResult(
			account("A1", 45, "", map[int]float64{2025: -100, 2024: 400}),
			account("A2", 50, "", map[int]float64{2025: 200, 2024: 100}),
		),
	}, FirstFileWins)
	require.NoError(t, err)

	rows, errs := BuildRows(combined)

	// A1 produces no row and exactly one validation error; A2 is unaffected.
	require.Len(t, rows, 1)
	assert.Equal(t, "A2", rows[0].AccountID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "negative aggregate amount for account A1")
}

func TestBuildRows_OutputSortedByAccountID(t *testing.T) {
	combined, err := Combine([]*FileResult{
		fileResult(
			account("B2", 45, "", map[int]float64{2025: 1, 2024: 1}),
			account("A1", 45, "", map[int]float64{2025: 1, 2024: 1}),
			account("C3", 45, "", map[int]float64{2025: 1, 2024: 1}),
		),
	}, FirstFileWins)
	require.NoError(t, err)

	rows, _ := BuildRows(combined)
	require.Len(t, rows, 3)
	assert.Equal(t, "A1", rows[0].AccountID)
	assert.Equal(t, "B2", rows[1].AccountID)
	assert.Equal(t, "C3", rows[2].AccountID)
}

func TestBuildRows_NilCombined(t *testing.T) {
	rows, errs := BuildRows(nil)
	assert.Nil(t, rows)
	assert.Nil(t, errs)
}

func TestCurrentPrior(t *testing.T) {
	c := &Combined{AllYears: []int{2025, 2024, 2023}}
	current, prior, ok := c.CurrentPrior()
	assert.True(t, ok)
	assert.Equal(t, 2025, current)
	assert.Equal(t, 2024, prior)

	_, _, ok = (&Combined{AllYears: []int{2025}}).CurrentPrior()
	assert.False(t, ok)
}

// TestPipeline_EndToEndExample walks the documented example through the full
// pipeline: three in-scope rows for account A1 across two fiscal years.
func TestPipeline_EndToEndExample(t *testing.T) {
	headers := []string{"Type", "Charge", "Account Id", "Birthday", "Zip"}
	rows := [][]string{
		{"Pledge 25", "$500.00", "A1", "3/15/1980", "02139"},
		{"Pledge 25", "$300.00", "A1", "3/15/1980", "02139"},
		{"Pledge 24", "$400.00", "A1", "3/15/1980", "02139"},
	}
	opts := ParseOptions{
		CategoryKeyword: "pledge",
		Signature:       DefaultSignature(),
		Now:             time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	result, err := ParseRows(headers, rows, opts)
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	combined, err := Combine([]*FileResult{result}, FirstFileWins)
	require.NoError(t, err)

	built, errs := BuildRows(combined)
	require.Empty(t, errs)
	require.Len(t, built, 1)

	row := built[0]
	assert.Equal(t, "A1", row.AccountID)
	assert.InDelta(t, 800.0, row.PledgeCurrent, 1e-9)
	assert.InDelta(t, 400.0, row.PledgePrior, 1e-9)
	assert.Equal(t, 45, row.Age)
	assert.Equal(t, "02139", row.ZipCode)
}
