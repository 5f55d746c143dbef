package valkey

import (
	"github.com/redis/rueidis"

	dbRedis "github.com/pickmyelective/electives/internal/db/redis"
)

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return New(dbRedis.Wrap(c))
}
