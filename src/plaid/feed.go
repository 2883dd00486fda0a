package plaid

import (
	"context"
	"log"
	"strings"
	"time"

	"snapshot-server/src/models"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

// SyncTransactions fetches one page of the transaction change feed. A
// nil cursor requests the start of history.
func (c *Client) SyncTransactions(ctx context.Context, accessToken string, cursor *string, count int32) (models.SyncPage, error) {
	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != nil && *cursor != "" {
		request.SetCursor(*cursor)
	}
	request.SetCount(count)

	resp, _, err := c.api.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return models.SyncPage{}, classify("transactions sync", err)
	}

	page := models.SyncPage{
		Added:      mapTransactions(resp.GetAdded()),
		Modified:   mapTransactions(resp.GetModified()),
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}
	for _, removed := range resp.GetRemoved() {
		page.Removed = append(page.Removed, removed.GetTransactionId())
	}

	log.Printf("INFO: Transactions synced - added: %d, modified: %d, removed: %d, has_more: %t",
		len(page.Added), len(page.Modified), len(page.Removed), page.HasMore)

	return page, nil
}

// GetAccountBalances fetches fresh balances for every account behind
// the access token.
func (c *Client) GetAccountBalances(ctx context.Context, accessToken string) ([]models.FeedAccount, error) {
	request := plaid.NewAccountsBalanceGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*request).Execute()
	if err != nil {
		return nil, classify("balances get", err)
	}
	return mapAccounts(resp.GetAccounts()), nil
}

// GetAccounts fetches account metadata for the access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]models.FeedAccount, error) {
	request := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, classify("accounts get", err)
	}
	return mapAccounts(resp.GetAccounts()), nil
}

// GetRecurringStreams fetches the aggregator's own recurring stream
// classification. The endpoint is not available for every institution,
// so a failure yields an empty result rather than an error.
func (c *Client) GetRecurringStreams(ctx context.Context, accessToken string) ([]models.RecurringStream, error) {
	request := plaid.NewTransactionsRecurringGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.TransactionsRecurringGet(ctx).TransactionsRecurringGetRequest(*request).Execute()
	if err != nil {
		log.Printf("WARN: Recurring transactions endpoint not available: %v", err)
		return nil, nil
	}

	var streams []models.RecurringStream
	for _, s := range resp.GetInflowStreams() {
		streams = append(streams, mapStream(s, models.DirectionInflow))
	}
	for _, s := range resp.GetOutflowStreams() {
		streams = append(streams, mapStream(s, models.DirectionOutflow))
	}
	return streams, nil
}

func mapTransactions(txns []plaid.Transaction) []models.TransactionRecord {
	records := make([]models.TransactionRecord, 0, len(txns))
	for _, txn := range txns {
		record := models.TransactionRecord{
			TransactionID: txn.GetTransactionId(),
			AccountID:     txn.GetAccountId(),
			Amount:        decimal.NewFromFloat(txn.GetAmount()),
			Date:          parseDate(txn.GetDate()),
			Name:          txn.GetName(),
			Category:      txn.GetCategory(),
			Pending:       txn.GetPending(),
		}
		if currency := txn.GetIsoCurrencyCode(); currency != "" {
			record.Currency = &currency
		}
		if merchant := txn.GetMerchantName(); merchant != "" {
			record.MerchantName = &merchant
		}
		if authorized := txn.GetAuthorizedDate(); authorized != "" {
			date := parseDate(authorized)
			record.AuthorizedDate = &date
		}
		if kind := txn.GetTransactionType(); kind != "" {
			record.TransactionType = &kind
		}
		records = append(records, record)
	}
	return records
}

func mapAccounts(accounts []plaid.AccountBase) []models.FeedAccount {
	mapped := make([]models.FeedAccount, 0, len(accounts))
	for _, acc := range accounts {
		fa := models.FeedAccount{
			AccountID: acc.GetAccountId(),
			Name:      acc.GetName(),
			Type:      string(acc.GetType()),
			Subtype:   string(acc.GetSubtype()),
		}
		if official := acc.GetOfficialName(); official != "" {
			fa.OfficialName = &official
		}
		if mask := acc.GetMask(); mask != "" {
			fa.Mask = &mask
		}

		balances := acc.GetBalances()
		if v, ok := balances.GetAvailableOk(); ok && v != nil {
			d := decimal.NewFromFloat(*v)
			fa.Available = &d
		}
		if v, ok := balances.GetCurrentOk(); ok && v != nil {
			d := decimal.NewFromFloat(*v)
			fa.Current = &d
		}
		if v, ok := balances.GetLimitOk(); ok && v != nil {
			d := decimal.NewFromFloat(*v)
			fa.Limit = &d
		}
		if v, ok := balances.GetIsoCurrencyCodeOk(); ok && v != nil {
			currency := *v
			fa.Currency = &currency
		}
		mapped = append(mapped, fa)
	}
	return mapped
}

func mapStream(s plaid.TransactionStream, direction string) models.RecurringStream {
	streamID := s.GetStreamId()
	stream := models.RecurringStream{
		StreamID:    &streamID,
		Description: s.GetDescription(),
		Category:    s.GetCategory(),
		FirstDate:   parseDate(s.GetFirstDate()),
		LastDate:    parseDate(s.GetLastDate()),
		Frequency:   strings.ToLower(string(s.GetFrequency())),
		Status:      strings.ToLower(string(s.GetStatus())),
		Direction:   direction,
		Source:      models.StreamSourcePlaid,
	}
	if merchant := s.GetMerchantName(); merchant != "" {
		stream.MerchantName = &merchant
	}

	avg := s.GetAverageAmount()
	if v, ok := avg.GetAmountOk(); ok && v != nil {
		stream.AvgAmount = decimal.NewFromFloat(*v)
	}
	if v, ok := avg.GetIsoCurrencyCodeOk(); ok && v != nil {
		stream.Currency = *v
	}
	return stream
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
