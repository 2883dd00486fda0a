package db

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache holds per-user read caches for the recurring and balance
// endpoints. Sync invalidates a user's entries so callers never see a
// summary computed over a stale mirror.
type Cache struct {
	inner *ristretto.Cache
}

func NewCache() (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) GetRecurring(userID int64, direction string) (interface{}, bool) {
	return c.inner.Get(recurringKey(userID, direction))
}

func (c *Cache) SetRecurring(userID int64, direction string, value interface{}) {
	c.inner.SetWithTTL(recurringKey(userID, direction), value, 1, 10*time.Minute)
}

func (c *Cache) GetBalanceSummary(userID int64) (interface{}, bool) {
	return c.inner.Get(balanceKey(userID))
}

func (c *Cache) SetBalanceSummary(userID int64, value interface{}) {
	c.inner.SetWithTTL(balanceKey(userID), value, 1, 5*time.Minute)
}

// InvalidateUser drops everything cached for the user. Called after any
// sync that touched their mirror.
func (c *Cache) InvalidateUser(userID int64) {
	for _, direction := range []string{"", "inflow", "outflow"} {
		c.inner.Del(recurringKey(userID, direction))
	}
	c.inner.Del(balanceKey(userID))
}

func recurringKey(userID int64, direction string) string {
	return fmt.Sprintf("recurring:%d:%s", userID, direction)
}

func balanceKey(userID int64) string {
	return fmt.Sprintf("balances:%d", userID)
}
