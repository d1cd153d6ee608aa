package domain

// ComparisonRow is the final two-year summary record for one household
// account, immutable once built. It is the unit of output consumed by the
// dashboard layer.
type ComparisonRow struct {
	AccountID     string  `json:"account_id" csv:"AccountId" validate:"required"`
	Age           int     `json:"age" csv:"Age" validate:"gte=0,lte=120"`
	PledgeCurrent float64 `json:"pledge_current" csv:"PledgeCurrent" validate:"gte=0"`
	PledgePrior   float64 `json:"pledge_prior" csv:"PledgePrior" validate:"gte=0"`
	ZipCode       string  `json:"zip_code,omitempty" csv:"ZipCode"`
}

// ParseError describes one rejected row or excluded account. Parse errors are
// collected and returned alongside successful output, never raised as
// control flow.
type ParseError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ImportStats summarizes one import session across all uploaded files.
// RowsRejected counts individual bad data rows; AccountsExcluded counts
// whole accounts dropped at comparison-row build time (missing age,
// negative aggregate). Both kinds appear in the Errors list.
type ImportStats struct {
	FilesProcessed   int   `json:"files_processed"`
	RowsAccepted     int   `json:"rows_accepted"`
	RowsSkipped      int   `json:"rows_skipped"`
	RowsRejected     int   `json:"rows_rejected"`
	AccountsExcluded int   `json:"accounts_excluded"`
	FiscalYears      []int `json:"fiscal_years"`
	CurrentYear      int   `json:"current_year"`
	PriorYear        int   `json:"prior_year"`
}

// ImportResult is the downstream consumer contract: comparison rows plus the
// itemized error list. Errors and rows coexist; an empty row list is not by
// itself a failure.
type ImportResult struct {
	Rows   []ComparisonRow `json:"rows"`
	Errors []ParseError    `json:"errors"`
	Stats  ImportStats     `json:"stats"`
}
