package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapshot-server/src/config"
	"snapshot-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	calls   int
	cursors []*string
	fn      func(call int, accessToken string, cursor *string) (models.SyncPage, error)
}

func (f *fakeFeed) SyncTransactions(ctx context.Context, accessToken string, cursor *string, count int32) (models.SyncPage, error) {
	f.calls++
	if cursor != nil {
		c := *cursor
		f.cursors = append(f.cursors, &c)
	} else {
		f.cursors = append(f.cursors, nil)
	}
	return f.fn(f.calls, accessToken, cursor)
}

type fakeStore struct {
	applied []models.SyncPage
	cursor  string
	err     error
}

func (s *fakeStore) ApplyPage(ctx context.Context, userID, itemDBID int64, page models.SyncPage) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.applied = append(s.applied, page)
	s.cursor = page.NextCursor
	return len(page.Added) + len(page.Modified), nil
}

type plainCipher struct{}

func (plainCipher) Decrypt(encrypted string) (string, error) {
	return encrypted, nil
}

type failingCipher struct{}

func (failingCipher) Decrypt(encrypted string) (string, error) {
	return "", errors.New("bad ciphertext")
}

type feedErr struct{ transient bool }

func (e *feedErr) Error() string   { return "feed unavailable" }
func (e *feedErr) Transient() bool { return e.transient }

func testConfig() config.SyncConfig {
	return config.SyncConfig{
		PageSize:    500,
		MaxPages:    10,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
		PageTimeout: time.Second,
	}
}

func testItem() models.Item {
	return models.Item{ID: 1, UserID: 7, ItemID: "item-abc", AccessToken: "token"}
}

func record(id string) models.TransactionRecord {
	return models.TransactionRecord{TransactionID: id, AccountID: "acc", Name: id}
}

func TestSyncItem_PaginationTermination(t *testing.T) {
	// Two pages with hasMore=true, then a final page: exactly three
	// feed calls, and the stored cursor is the last page's.
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		switch call {
		case 1:
			return models.SyncPage{Added: []models.TransactionRecord{record("t1"), record("t2")}, NextCursor: "c1", HasMore: true}, nil
		case 2:
			return models.SyncPage{Added: []models.TransactionRecord{record("t3")}, NextCursor: "c2", HasMore: true}, nil
		default:
			return models.SyncPage{NextCursor: "c3", HasMore: false}, nil
		}
	}}
	store := &fakeStore{}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.Empty(t, result.Error)
	assert.Equal(t, 3, feed.calls)
	assert.Equal(t, 3, result.TransactionsSynced)
	assert.Equal(t, "c3", result.Cursor)
	assert.Equal(t, "c3", store.cursor)
	require.Len(t, store.applied, 3)
}

func TestSyncItem_ResumesFromStoredCursor(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{NextCursor: "next", HasMore: false}, nil
	}}
	o := NewOrchestrator(feed, &fakeStore{}, plainCipher{}, testConfig())

	stored := "stored-cursor"
	item := testItem()
	item.Cursor = &stored

	o.SyncItem(context.Background(), item, false)

	require.Len(t, feed.cursors, 1)
	require.NotNil(t, feed.cursors[0])
	assert.Equal(t, "stored-cursor", *feed.cursors[0])
}

func TestSyncItem_FullSyncIgnoresStoredCursor(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{NextCursor: "next", HasMore: false}, nil
	}}
	o := NewOrchestrator(feed, &fakeStore{}, plainCipher{}, testConfig())

	stored := "stored-cursor"
	item := testItem()
	item.Cursor = &stored

	o.SyncItem(context.Background(), item, true)

	require.Len(t, feed.cursors, 1)
	assert.Nil(t, feed.cursors[0])
}

func TestSyncItem_TransientErrorRetries(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		if call == 1 {
			return models.SyncPage{}, &feedErr{transient: true}
		}
		return models.SyncPage{Added: []models.TransactionRecord{record("t1")}, NextCursor: "c1", HasMore: false}, nil
	}}
	store := &fakeStore{}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.Empty(t, result.Error)
	assert.Equal(t, 2, feed.calls)
	assert.Equal(t, 1, result.TransactionsSynced)
}

func TestSyncItem_RetryBudgetExhausted(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{}, &feedErr{transient: true}
	}}
	store := &fakeStore{}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.NotEmpty(t, result.Error)
	assert.Contains(t, result.Error, "retry budget exhausted")
	// Initial attempt plus MaxRetries retries.
	assert.Equal(t, 3, feed.calls)
	assert.Empty(t, store.applied)
}

func TestSyncItem_FatalErrorDoesNotRetry(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{}, &feedErr{transient: false}
	}}
	o := NewOrchestrator(feed, &fakeStore{}, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 1, feed.calls)
}

func TestSyncItem_StoreFailureLeavesCursorAlone(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{Added: []models.TransactionRecord{record("t1")}, NextCursor: "c1", HasMore: true}, nil
	}}
	store := &fakeStore{err: errors.New("write failed")}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 1, feed.calls, "no further pages after a failed write-group")
	assert.Empty(t, store.cursor)
	assert.Equal(t, 0, result.TransactionsSynced)
}

func TestSyncItem_PageCeiling(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{NextCursor: "again", HasMore: true}, nil
	}}
	o := NewOrchestrator(feed, &fakeStore{}, plainCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)

	assert.Contains(t, result.Error, "page limit")
	assert.Equal(t, 10, feed.calls)
}

func TestSyncItem_DecryptFailure(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		t.Fatal("feed must not be called when the credential cannot be decrypted")
		return models.SyncPage{}, nil
	}}
	o := NewOrchestrator(feed, &fakeStore{}, failingCipher{}, testConfig())

	result := o.SyncItem(context.Background(), testItem(), false)
	assert.Contains(t, result.Error, "decrypt access token")
}

func TestSyncItem_EmptyFeedIsNoOp(t *testing.T) {
	// Re-running from an advanced cursor with nothing new upstream
	// touches zero rows.
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		return models.SyncPage{NextCursor: "same", HasMore: false}, nil
	}}
	store := &fakeStore{}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	cursor := "same"
	item := testItem()
	item.Cursor = &cursor

	result := o.SyncItem(context.Background(), item, false)

	assert.Empty(t, result.Error)
	assert.Equal(t, 0, result.TransactionsSynced)
	assert.Equal(t, "same", result.Cursor)
}

func TestSyncAll_ItemFailureIsIsolated(t *testing.T) {
	feed := &fakeFeed{fn: func(call int, token string, cursor *string) (models.SyncPage, error) {
		if token == "revoked" {
			return models.SyncPage{}, &feedErr{transient: false}
		}
		return models.SyncPage{Added: []models.TransactionRecord{record("t1")}, NextCursor: "c1", HasMore: false}, nil
	}}
	store := &fakeStore{}
	o := NewOrchestrator(feed, store, plainCipher{}, testConfig())

	items := []models.Item{
		{ID: 1, UserID: 7, ItemID: "item-good", AccessToken: "ok"},
		{ID: 2, UserID: 7, ItemID: "item-bad", AccessToken: "revoked"},
	}

	summary := o.SyncAll(context.Background(), 7, items, false)

	assert.Equal(t, 2, summary.ItemsSynced)
	assert.Equal(t, 1, summary.TotalTransactions)
	require.Len(t, summary.Results, 2)
	assert.Empty(t, summary.Results[0].Error)
	assert.NotEmpty(t, summary.Results[1].Error)
	assert.Equal(t, "item-bad", summary.Results[1].ItemID)
}
