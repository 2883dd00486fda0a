package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StreamSourcePlaid  = "plaid"
	StreamSourceCustom = "custom"

	DirectionInflow  = "inflow"
	DirectionOutflow = "outflow"

	CadenceWeekly    = "weekly"
	CadenceBiweekly  = "biweekly"
	CadenceMonthly   = "monthly"
	CadenceIrregular = "irregular"
)

// RecurringStream is a recurring transaction pattern, either reported by
// the aggregator or inferred locally. It is recomputed per request and
// never persisted by this server.
type RecurringStream struct {
	StreamID          *string         `json:"stream_id"`
	Description       string          `json:"description"`
	MerchantName      *string         `json:"merchant_name,omitempty"`
	Category          []string        `json:"category,omitempty"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
	Currency          string          `json:"currency"`
	FirstDate         time.Time       `json:"first_date"`
	LastDate          time.Time       `json:"last_date"`
	NextEstimatedDate *time.Time      `json:"next_estimated_date,omitempty"`
	Frequency         string          `json:"frequency"`
	Occurrences       int             `json:"occurrences"`
	Direction         string          `json:"direction"`
	Confidence        float64         `json:"confidence"`
	Status            string          `json:"status,omitempty"`
	Source            string          `json:"source"`
}
