/*
schedule.go - Payment schedule apportionment

Splits a total fee across named contract stages by percentage. The stage
order is meaningful (it mirrors the contract's delivery sequence), so shares
are an ordered slice, never a map.

The percentages of one schedule must sum to exactly 100. A mismatch is a
schedule_sum_mismatch advisory: per-stage values stay well-defined
(pct/100 × total) even when the total share is wrong, so the computation is
flagged but never blocked.
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// StageShare is one named stage with its percentage of the total fee.
type StageShare struct {
	Stage      string
	Percentage decimal.Decimal
}

// ScheduleEntry is one apportioned stage: its share and the money it maps to.
type ScheduleEntry struct {
	Stage      string
	Percentage decimal.Decimal
	Value      decimal.Decimal
}

// Schedule is the ordered apportionment of one total.
type Schedule []ScheduleEntry

// Total sums the per-stage values.
func (s Schedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Value)
	}
	return total
}

// Apportion distributes total across the given shares in order. The returned
// advisories carry a schedule_sum_mismatch finding when the percentages do
// not sum to exactly 100.
func Apportion(total decimal.Decimal, shares []StageShare) (Schedule, Advisories) {
	var advs Advisories

	sum := decimal.Zero
	for _, sh := range shares {
		sum = sum.Add(sh.Percentage)
	}
	if !sum.Equal(hundred) {
		advs = advs.Add(CodeScheduleSumMismatch, "schedule",
			"stage percentages sum to %s, expected 100", sum.String())
	}

	schedule := make(Schedule, len(shares))
	for i, sh := range shares {
		schedule[i] = ScheduleEntry{
			Stage:      sh.Stage,
			Percentage: sh.Percentage,
			Value:      sh.Percentage.Div(hundred).Mul(total),
		}
	}
	return schedule, advs
}
