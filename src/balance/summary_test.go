package balance

import (
	"testing"
	"time"

	"snapshot-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id, accType, subtype, current string) models.FeedAccount {
	d := decimal.RequireFromString(current)
	return models.FeedAccount{
		AccountID: id,
		Name:      id,
		Type:      accType,
		Subtype:   subtype,
		Current:   &d,
	}
}

func TestSummarize_NetCash(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	accounts := []models.FeedAccount{
		account("chk", "depository", "checking", "2500.00"),
		account("sav", "depository", "savings", "10000.00"),
		account("cc", "credit", "credit card", "850.25"),
	}

	summary := Summarize(accounts, asOf)

	assert.True(t, summary.ChequingTotal.Equal(decimal.RequireFromString("2500.00")))
	assert.True(t, summary.SavingsTotal.Equal(decimal.RequireFromString("10000.00")))
	assert.True(t, summary.CreditCardsTotalOwed.Equal(decimal.RequireFromString("850.25")))
	assert.True(t, summary.NetCash.Equal(decimal.RequireFromString("11649.75")), "net cash %s", summary.NetCash)
	assert.Equal(t, asOf, summary.AsOf)
	require.Len(t, summary.Breakdown, 3)
}

func TestSummarize_MultipleAccountsPerBucket(t *testing.T) {
	accounts := []models.FeedAccount{
		account("chk1", "depository", "checking", "100.00"),
		account("chk2", "depository", "checking", "250.50"),
		account("cc1", "credit", "credit card", "40.00"),
		account("cc2", "credit", "credit card", "60.00"),
	}

	summary := Summarize(accounts, time.Now())

	assert.True(t, summary.ChequingTotal.Equal(decimal.RequireFromString("350.50")))
	assert.True(t, summary.CreditCardsTotalOwed.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, summary.NetCash.Equal(decimal.RequireFromString("250.50")))
}

func TestSummarize_IgnoresOtherAccountTypes(t *testing.T) {
	accounts := []models.FeedAccount{
		account("chk", "depository", "checking", "500.00"),
		account("brokerage", "investment", "brokerage", "99999.00"),
		account("cd", "depository", "cd", "3000.00"),
	}

	summary := Summarize(accounts, time.Now())

	assert.True(t, summary.NetCash.Equal(decimal.RequireFromString("500.00")))
	// Ignored for totals, still present in the breakdown.
	assert.Len(t, summary.Breakdown, 3)
}

func TestSummarize_NilCurrentBalance(t *testing.T) {
	acc := account("chk", "depository", "checking", "100.00")
	acc.Current = nil

	summary := Summarize([]models.FeedAccount{acc}, time.Now())
	assert.True(t, summary.NetCash.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, time.Now())
	assert.True(t, summary.NetCash.IsZero())
	assert.Empty(t, summary.Breakdown)
}
