package balance

import (
	"time"

	"snapshot-server/src/models"

	"github.com/shopspring/decimal"
)

// Summarize folds fresh account balances into the cash snapshot:
// checking and savings add to net cash, credit-card balances are owed
// amounts and subtract from it.
func Summarize(accounts []models.FeedAccount, asOf time.Time) models.BalanceSummary {
	summary := models.BalanceSummary{
		ChequingTotal:        decimal.Zero,
		SavingsTotal:         decimal.Zero,
		CreditCardsTotalOwed: decimal.Zero,
		AsOf:                 asOf,
	}

	for _, acc := range accounts {
		current := decimal.Zero
		if acc.Current != nil {
			current = *acc.Current
		}

		switch acc.Type {
		case "depository":
			switch acc.Subtype {
			case "checking":
				summary.ChequingTotal = summary.ChequingTotal.Add(current)
			case "savings":
				summary.SavingsTotal = summary.SavingsTotal.Add(current)
			}
		case "credit":
			summary.CreditCardsTotalOwed = summary.CreditCardsTotalOwed.Add(current)
		}

		summary.Breakdown = append(summary.Breakdown, models.AccountBalance{
			AccountID: acc.AccountID,
			Name:      acc.Name,
			Type:      acc.Type,
			Subtype:   acc.Subtype,
			Current:   acc.Current,
			Available: acc.Available,
			Currency:  acc.Currency,
		})
	}

	summary.NetCash = summary.ChequingTotal.Add(summary.SavingsTotal).Sub(summary.CreditCardsTotalOwed)
	return summary
}
