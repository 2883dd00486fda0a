package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a locally mirrored transaction row. Amount follows the
// Plaid sign convention: positive = money leaving the account (outflow).
type Transaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	TransactionID   string          `json:"transaction_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        *string         `json:"currency,omitempty"`
	Date            time.Time       `json:"date"`
	AuthorizedDate  *time.Time      `json:"authorized_date,omitempty"`
	Name            string          `json:"name"`
	MerchantName    *string         `json:"merchant_name,omitempty"`
	Category        []string        `json:"category,omitempty"`
	Pending         bool            `json:"pending"`
	TransactionType *string         `json:"transaction_type,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransactionRecord is a transaction as delivered by the change feed,
// before it has been resolved against a locally stored account.
type TransactionRecord struct {
	TransactionID   string          `json:"transaction_id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        *string         `json:"currency,omitempty"`
	Date            time.Time       `json:"date"`
	AuthorizedDate  *time.Time      `json:"authorized_date,omitempty"`
	Name            string          `json:"name"`
	MerchantName    *string         `json:"merchant_name,omitempty"`
	Category        []string        `json:"category,omitempty"`
	Pending         bool            `json:"pending"`
	TransactionType *string         `json:"transaction_type,omitempty"`
}
