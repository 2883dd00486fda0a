package recurring

import (
	"fmt"
	"testing"
	"time"

	"snapshot-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// txnSeries builds one transaction per gap boundary: the first on start,
// then one more after each gap in days.
func txnSeries(merchant string, amount string, start time.Time, gaps ...int) []models.Transaction {
	txns := []models.Transaction{{
		TransactionID: merchant + "-0",
		Amount:        dec(amount),
		Date:          start,
		Name:          merchant,
	}}
	current := start
	for i, gap := range gaps {
		current = current.AddDate(0, 0, gap)
		txns = append(txns, models.Transaction{
			TransactionID: fmt.Sprintf("%s-%d", merchant, i+1),
			Amount:        dec(amount),
			Date:          current,
			Name:          merchant,
		})
	}
	return txns
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClassifyCadence_Boundaries(t *testing.T) {
	tests := []struct {
		meanGap float64
		want    string
	}{
		{27, models.CadenceMonthly},
		{30, models.CadenceMonthly},
		{32, models.CadenceMonthly},
		{26.9, models.CadenceIrregular},
		{32.1, models.CadenceIrregular},
		{13, models.CadenceBiweekly},
		{14, models.CadenceBiweekly},
		{15, models.CadenceBiweekly},
		{12.9, models.CadenceIrregular},
		{15.1, models.CadenceIrregular},
		{6, models.CadenceWeekly},
		{7, models.CadenceWeekly},
		{8, models.CadenceWeekly},
		{5.9, models.CadenceIrregular},
		{8.1, models.CadenceIrregular},
		{21, models.CadenceIrregular},
		{90, models.CadenceIrregular},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("gap_%v", tt.meanGap), func(t *testing.T) {
			assert.Equal(t, tt.want, classifyCadence(tt.meanGap, true))
		})
	}
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Netflix", "netflix"},
		{"NETFLIX.COM 0123456789", "netflixcom"},
		{"Spotify P0A1B2C3", "spotify pabc"},
		{"  AMZN Mktp US*123456  ", "amzn mktp us"},
		{"7-Eleven #1234", "eleven"},
		{"12345", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMerchant(tt.in), "input %q", tt.in)
	}
}

func TestDetect_MinimumOccurrenceGate(t *testing.T) {
	// Two occurrences (one gap) is not enough; three qualifies.
	two := txnSeries("Netflix", "15.99", date(2025, 1, 1), 30)
	assert.Empty(t, Detect(two, DefaultOptions()))

	three := txnSeries("Netflix", "15.99", date(2025, 1, 1), 30, 30)
	streams := Detect(three, DefaultOptions())
	require.Len(t, streams, 1)
	assert.Equal(t, 3, streams[0].Occurrences)
}

func TestDetect_MonthlyStream(t *testing.T) {
	txns := txnSeries("Netflix", "15.99", date(2025, 1, 5), 31, 28, 31)
	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)

	stream := streams[0]
	assert.Equal(t, "netflix", stream.Description)
	assert.Equal(t, models.CadenceMonthly, stream.Frequency)
	assert.Equal(t, 0.9, stream.Confidence)
	assert.Equal(t, date(2025, 1, 5), stream.FirstDate)
	assert.Equal(t, date(2025, 4, 5), stream.LastDate)
	require.NotNil(t, stream.NextEstimatedDate)
	assert.Equal(t, date(2025, 5, 5), *stream.NextEstimatedDate)
	assert.True(t, stream.AvgAmount.Equal(dec("15.99")), "avg amount %s", stream.AvgAmount)
	assert.Equal(t, models.DirectionOutflow, stream.Direction)
	assert.Equal(t, models.StreamSourceCustom, stream.Source)
}

func TestDetect_WeeklyNextDate(t *testing.T) {
	txns := txnSeries("Gym", "25.00", date(2025, 3, 3), 7, 7, 7)
	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)

	assert.Equal(t, models.CadenceWeekly, streams[0].Frequency)
	require.NotNil(t, streams[0].NextEstimatedDate)
	assert.Equal(t, date(2025, 3, 31), *streams[0].NextEstimatedDate)
}

func TestDetect_BiweeklyHasNoEstimateByDefault(t *testing.T) {
	txns := txnSeries("Payroll", "-2000.00", date(2025, 2, 7), 14, 14)
	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)

	assert.Equal(t, models.CadenceBiweekly, streams[0].Frequency)
	assert.Nil(t, streams[0].NextEstimatedDate)
	assert.Equal(t, models.DirectionInflow, streams[0].Direction)
	assert.True(t, streams[0].AvgAmount.Equal(dec("2000.00")))
}

func TestDetect_IrregularConfidence(t *testing.T) {
	txns := txnSeries("Cafe", "4.50", date(2025, 1, 1), 3, 45, 9)
	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)

	assert.Equal(t, models.CadenceIrregular, streams[0].Frequency)
	assert.Equal(t, 0.5, streams[0].Confidence)
	assert.Nil(t, streams[0].NextEstimatedDate)
}

func TestDetect_FallbackGapEstimate(t *testing.T) {
	// The merchant-only variant estimates from the mean observed gap
	// when the cadence has no fixed rule.
	opts := Options{Grouping: GroupByMerchant, MinOccurrences: 2, FallbackGapDays: 30}

	txns := txnSeries("Storage", "120.00", date(2025, 1, 1), 20, 22)
	streams := Detect(txns, opts)
	require.Len(t, streams, 1)

	require.NotNil(t, streams[0].NextEstimatedDate)
	// last date 2025-02-12, mean gap 21
	assert.Equal(t, date(2025, 3, 5), *streams[0].NextEstimatedDate)
}

func TestDetect_GroupsSeparateAmounts(t *testing.T) {
	// Same merchant, distinct rounded amounts: two streams under the
	// default grouping, one under merchant-only.
	txns := append(
		txnSeries("Amazon", "14.99", date(2025, 1, 1), 30, 30),
		txnSeries("Amazon", "79.00", date(2025, 1, 10), 30, 30)...,
	)
	// Distinct ids across the two series.
	for i := range txns[3:] {
		txns[3+i].TransactionID = fmt.Sprintf("Amazon-b-%d", i)
	}

	assert.Len(t, Detect(txns, DefaultOptions()), 2)

	merchantOnly := Options{Grouping: GroupByMerchant, MinOccurrences: 3, FallbackGapDays: 30}
	assert.Len(t, Detect(txns, merchantOnly), 1)
}

func TestDetect_AmountRoundingToleratesFeeVariance(t *testing.T) {
	// 54.80 through 55.30 all round to 55, so they stay one group.
	txns := txnSeries("Hydro", "55.10", date(2025, 1, 1), 30, 30)
	txns[1].Amount = dec("54.80")
	txns[2].Amount = dec("55.30")

	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)
	assert.True(t, streams[0].AvgAmount.Round(2).Equal(dec("55.07")), "avg %s", streams[0].AvgAmount)
}

func TestDetect_MerchantFallsBackToName(t *testing.T) {
	// No merchant label anywhere: the display name is normalized and
	// used instead.
	txns := txnSeries("SPOTIFY STOCKHOLM 123", "9.99", date(2025, 1, 1), 30, 30)

	streams := Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)
	assert.Equal(t, "spotify stockholm", streams[0].Description)

	// An explicit merchant label wins over the display name.
	merchant := "Spotify AB 99"
	for i := range txns {
		txns[i].MerchantName = &merchant
	}
	streams = Detect(txns, DefaultOptions())
	require.Len(t, streams, 1)
	assert.Equal(t, "spotify ab", streams[0].Description)
}

func TestDetect_Deterministic(t *testing.T) {
	txns := append(
		txnSeries("Netflix", "15.99", date(2025, 1, 1), 30, 30),
		txnSeries("Gym", "25.00", date(2025, 1, 2), 7, 7, 7)...,
	)

	first := Detect(txns, DefaultOptions())
	second := Detect(txns, DefaultOptions())
	assert.Equal(t, first, second)
}

func TestDetect_EmptyInput(t *testing.T) {
	assert.Empty(t, Detect(nil, DefaultOptions()))
}
