package valkey

import (
	"context"
	"strings"

	"github.com/redis/rueidis"

	"github.com/pickmyelective/electives/internal/db"
	dbRedis "github.com/pickmyelective/electives/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store implements db.Store for Valkey with the valkey-search module.
// Hash, key-value and FT.CREATE/FT.INFO calls are shared with the Redis store;
// search, drop and alias handling follow what valkey-search accepts.
type Store struct {
	*dbRedis.Store
}

// New layers the valkey-search dialect over a connected store.
func New(base *dbRedis.Store) *Store {
	return &Store{Store: base}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.Client().Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.Client().B()
}

// Scan returns every key matching pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// indexToKeyPrefix converts an index name to its document key prefix.
// "electives:courses_1264:idx" -> "electives:courses_1264:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}

func isNotFound(err error) bool {
	return dbRedis.IsServerErr(err, "not found") || dbRedis.IsServerErr(err, "unknown index name")
}
