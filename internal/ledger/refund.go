package ledger

import (
	"time"

	"evently/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EvaluateRefund returns the percent of the first tier, in stored order, whose
// [min, max] range contains daysBeforeEvent. Overlapping tiers are not
// deduplicated: the earlier one wins.
func EvaluateRefund(tiers []models.RefundRuleDetail, daysBeforeEvent int) (int, bool) {
	for _, tier := range tiers {
		if tier.MinDaysBeforeEvent <= daysBeforeEvent && daysBeforeEvent <= tier.MaxDaysBeforeEvent {
			return tier.RefundPercent, true
		}
	}
	return 0, false
}

// DaysBeforeEvent counts whole days from now until start, truncated toward zero.
func DaysBeforeEvent(start, now time.Time) int {
	return int(start.Sub(now) / (24 * time.Hour))
}

// RefundAmount applies percent to the price actually paid.
func RefundAmount(price decimal.Decimal, percent int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(2)
}
