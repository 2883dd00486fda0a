package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID           int64     `json:"id"`
	ItemID       int64     `json:"item_id"`
	AccountID    string    `json:"account_id"`
	Name         string    `json:"name"`
	OfficialName *string   `json:"official_name,omitempty"`
	Mask         *string   `json:"mask,omitempty"`
	Type         string    `json:"type"`
	Subtype      string    `json:"subtype"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedAccount is an account as reported by the aggregator, including
// its current balances.
type FeedAccount struct {
	AccountID    string           `json:"account_id"`
	Name         string           `json:"name"`
	OfficialName *string          `json:"official_name,omitempty"`
	Mask         *string          `json:"mask,omitempty"`
	Type         string           `json:"type"`
	Subtype      string           `json:"subtype"`
	Current      *decimal.Decimal `json:"current_balance"`
	Available    *decimal.Decimal `json:"available"`
	Limit        *decimal.Decimal `json:"limit_amount,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
}
