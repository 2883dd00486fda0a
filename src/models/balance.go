package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is a point-in-time balance for one account as reported
// by the aggregator. Credit accounts report Current as a positive
// magnitude owed.
type AccountBalance struct {
	AccountID string           `json:"account_id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Subtype   string           `json:"subtype"`
	Current   *decimal.Decimal `json:"current_balance"`
	Available *decimal.Decimal `json:"available"`
	Limit     *decimal.Decimal `json:"limit_amount,omitempty"`
	Currency  *string          `json:"currency,omitempty"`
}

type BalanceSummary struct {
	ChequingTotal        decimal.Decimal  `json:"chequing_total"`
	SavingsTotal         decimal.Decimal  `json:"savings_total"`
	CreditCardsTotalOwed decimal.Decimal  `json:"credit_cards_total_owed"`
	NetCash              decimal.Decimal  `json:"net_cash"`
	AsOf                 time.Time        `json:"as_of"`
	Breakdown            []AccountBalance `json:"account_breakdown"`
}
