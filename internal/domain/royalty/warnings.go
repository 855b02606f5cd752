package royalty

import "sort"

// WarningCode identifies a non-fatal statement annotation.
type WarningCode string

const (
	// WarningLifetimeHistoryIncomplete - lifetime tiering ran on known-gappy
	// history; the position may under-count prior sales.
	WarningLifetimeHistoryIncomplete WarningCode = "lifetime_history_incomplete"

	// WarningNegativeNet - returns deduction exceeded gross royalty and was
	// capped.
	WarningNegativeNet WarningCode = "negative_net"

	// WarningZeroNet - advance recoupment consumed the entire gross royalty.
	WarningZeroNet WarningCode = "zero_net"

	// WarningNoSales - zero net quantity and no prior-period activity.
	WarningNoSales WarningCode = "no_sales"
)

// Warning annotates a composed statement. Warnings never prevent
// composition; fatal conditions are errors.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// warningPrecedence is the explicit precedence when several warning
// conditions hold simultaneously. All applicable warnings are emitted,
// ordered by this list; the first is the primary annotation.
var warningPrecedence = map[WarningCode]int{
	WarningLifetimeHistoryIncomplete: 0,
	WarningNegativeNet:               1,
	WarningZeroNet:                   2,
	WarningNoSales:                   3,
}

// sortWarnings orders warnings by precedence, in place.
func sortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		return warningPrecedence[ws[i].Code] < warningPrecedence[ws[j].Code]
	})
}
