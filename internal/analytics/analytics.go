// Package analytics computes read-only derived views over a user's
// transaction records: summary totals, category breakdown and
// time-bucketed trends. All three are pure functions over a record slice;
// Service pairs them with the store.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/dvloznov/spendwise/internal/domain"
)

// Summary holds income/expense/savings totals for one user.
type Summary struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// CategoryTotal is one entry of the category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TrendPoint is one date bucket of the trend series.
type TrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Period selects the requested trend granularity. Only monthly grouping
// is wired into the bucketing at present; daily and weekly are accepted
// and echoed back but grouped monthly all the same, which existing
// clients rely on.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// trendBucketKey derives the bucket label for a record. "YYYY-MM" keys
// sort lexicographically in chronological order.
const trendBucketLayout = "2006-01"

// Summarize computes income, expense and savings totals. A record counts
// as income exactly when its category is the income sentinel; everything
// else, uncategorized records included, counts as expense. Amounts are
// summed as stored.
func Summarize(records []*domain.Transaction) Summary {
	var s Summary
	for _, tx := range records {
		if tx.IsIncome() {
			s.Income += tx.Amount
		} else {
			s.Expenses += tx.Amount
		}
	}
	s.Savings = s.Income - s.Expenses
	return s
}

// CategoryBreakdown sums absolute amounts per category, highest first.
// Records with no category at all are excluded, as is the income sentinel
// in any case. A present-but-empty category is its own bucket; this
// deliberately differs from Summarize's "uncategorized = expense" rule.
func CategoryBreakdown(records []*domain.Transaction) []CategoryTotal {
	totals := make(map[string]float64)
	for _, tx := range records {
		if tx.Category == nil {
			continue
		}
		if strings.EqualFold(*tx.Category, domain.IncomeCategory) {
			continue
		}
		totals[*tx.Category] += math.Abs(tx.Amount)
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		result = append(result, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result
}

// Trends groups records into monthly buckets keyed "YYYY-MM" and sums the
// raw signed amounts within each bucket, ascending by bucket key. The
// period parameter does not change the grouping; see Period.
func Trends(records []*domain.Transaction, period Period) []TrendPoint {
	buckets := make(map[string]float64)
	for _, tx := range records {
		key := tx.Date.Format(trendBucketLayout)
		buckets[key] += tx.Amount
	}

	result := make([]TrendPoint, 0, len(buckets))
	for key, amount := range buckets {
		result = append(result, TrendPoint{Date: key, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}
