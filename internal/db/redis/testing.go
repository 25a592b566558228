package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest creates a Store over the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c, poll: 10 * time.Millisecond}
}
