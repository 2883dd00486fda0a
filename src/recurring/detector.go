package recurring

import (
	"sort"
	"strings"
	"time"

	"snapshot-server/src/models"

	"github.com/shopspring/decimal"
)

type Grouping string

const (
	// GroupByMerchantAndAmount separates genuinely different recurring
	// amounts from the same merchant while the rounding tolerates small
	// fee and tax variance.
	GroupByMerchantAndAmount Grouping = "merchant_amount"
	GroupByMerchant          Grouping = "merchant"
)

// Options tunes the detector. FallbackGapDays only matters for groups
// that classify as neither monthly nor weekly: zero means no next-date
// estimate for them, nonzero estimates from the mean observed gap,
// falling back to that many days when no gap exists.
type Options struct {
	Grouping        Grouping
	MinOccurrences  int
	FallbackGapDays int
}

func DefaultOptions() Options {
	return Options{
		Grouping:        GroupByMerchantAndAmount,
		MinOccurrences:  3,
		FallbackGapDays: 0,
	}
}

// Cadence classification bands, mean day-gap inclusive.
const (
	monthlyMinGap  = 27.0
	monthlyMaxGap  = 32.0
	biweeklyMinGap = 13.0
	biweeklyMaxGap = 15.0
	weeklyMinGap   = 6.0
	weeklyMaxGap   = 8.0

	classifiedConfidence = 0.9
	irregularConfidence  = 0.5
)

// Detect infers recurring streams from a snapshot of mirrored
// transactions. Pure: no I/O, deterministic for a given input.
func Detect(transactions []models.Transaction, opts Options) []models.RecurringStream {
	groups := make(map[string][]models.Transaction)
	order := make([]string, 0)

	for _, txn := range transactions {
		key := groupKey(txn, opts.Grouping)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], txn)
	}

	var streams []models.RecurringStream
	for _, key := range order {
		group := groups[key]
		if len(group) < opts.MinOccurrences {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Date.Equal(group[j].Date) {
				return group[i].TransactionID < group[j].TransactionID
			}
			return group[i].Date.Before(group[j].Date)
		})

		meanGap, hasGap := meanGapDays(group)
		cadence := classifyCadence(meanGap, hasGap)

		stream := models.RecurringStream{
			Description: NormalizeMerchant(merchantLabel(group[0])),
			AvgAmount:   meanAbsAmount(group),
			Currency:    groupCurrency(group),
			FirstDate:   group[0].Date,
			LastDate:    group[len(group)-1].Date,
			Frequency:   cadence,
			Occurrences: len(group),
			Direction:   groupDirection(group),
			Confidence:  classifiedConfidence,
			Source:      models.StreamSourceCustom,
		}
		if cadence == models.CadenceIrregular {
			stream.Confidence = irregularConfidence
		}
		merchant := stream.Description
		stream.MerchantName = &merchant
		stream.NextEstimatedDate = estimateNextDate(stream.LastDate, cadence, meanGap, hasGap, opts.FallbackGapDays)

		streams = append(streams, stream)
	}

	return streams
}

// NormalizeMerchant collapses noisy merchant labels: lower-case, digits
// and symbols stripped, whitespace trimmed.
func NormalizeMerchant(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func merchantLabel(txn models.Transaction) string {
	if txn.MerchantName != nil && *txn.MerchantName != "" {
		return *txn.MerchantName
	}
	return txn.Name
}

func groupKey(txn models.Transaction, grouping Grouping) string {
	merchant := NormalizeMerchant(merchantLabel(txn))
	if merchant == "" {
		return ""
	}
	if grouping == GroupByMerchant {
		return merchant
	}
	return merchant + "_" + txn.Amount.Abs().Round(0).String()
}

func meanGapDays(group []models.Transaction) (float64, bool) {
	if len(group) < 2 {
		return 0, false
	}
	total := 0.0
	for i := 1; i < len(group); i++ {
		total += group[i].Date.Sub(group[i-1].Date).Hours() / 24
	}
	return total / float64(len(group)-1), true
}

func classifyCadence(meanGap float64, hasGap bool) string {
	switch {
	case !hasGap:
		return models.CadenceIrregular
	case meanGap >= monthlyMinGap && meanGap <= monthlyMaxGap:
		return models.CadenceMonthly
	case meanGap >= biweeklyMinGap && meanGap <= biweeklyMaxGap:
		return models.CadenceBiweekly
	case meanGap >= weeklyMinGap && meanGap <= weeklyMaxGap:
		return models.CadenceWeekly
	default:
		return models.CadenceIrregular
	}
}

func estimateNextDate(last time.Time, cadence string, meanGap float64, hasGap bool, fallbackGapDays int) *time.Time {
	switch cadence {
	case models.CadenceMonthly:
		next := last.AddDate(0, 1, 0)
		return &next
	case models.CadenceWeekly:
		next := last.AddDate(0, 0, 7)
		return &next
	}

	if fallbackGapDays <= 0 {
		return nil
	}
	gap := fallbackGapDays
	if hasGap {
		gap = int(meanGap + 0.5)
	}
	next := last.AddDate(0, 0, gap)
	return &next
}

func meanAbsAmount(group []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range group {
		sum = sum.Add(txn.Amount.Abs())
	}
	return sum.Div(decimal.NewFromInt(int64(len(group))))
}

// groupDirection derives flow direction from the raw signed amounts.
// Positive sums mean money leaving the account under the feed's sign
// convention, so they classify as outflow.
func groupDirection(group []models.Transaction) string {
	sum := decimal.Zero
	for _, txn := range group {
		sum = sum.Add(txn.Amount)
	}
	if sum.IsPositive() {
		return models.DirectionOutflow
	}
	return models.DirectionInflow
}

func groupCurrency(group []models.Transaction) string {
	for _, txn := range group {
		if txn.Currency != nil && *txn.Currency != "" {
			return *txn.Currency
		}
	}
	return "USD"
}
