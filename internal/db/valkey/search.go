package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/pickmyelective/electives/internal/db"
	dbRedis "github.com/pickmyelective/electives/internal/db/redis"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// valkey-search rejects SORTBY, so hits come back in server order and callers sort by Distance.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	args := []string{q.IndexName, dbRedis.BuildKNNQuery(q.Filters, q.K)}

	if len(q.ReturnFields) > 0 {
		fields := append([]string{dbRedis.ScoreField}, q.ReturnFields...)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", dbRedis.VectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isNotFound(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return dbRedis.ParseSearchResult(raw, true)
}

// SearchList performs paginated search. valkey-search does not support bare FT.SEARCH
// without KNN, so query="*" falls back to SCAN + HGETALL over the index prefix.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if query == "*" {
		return s.scanList(ctx, index, offset, limit, fields)
	}
	return s.Store.SearchList(ctx, index, query, offset, limit, fields)
}

// SearchCount returns document count. Falls back to SCAN for query="*".
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query == "*" {
		keys, err := s.Scan(ctx, indexToKeyPrefix(index)+"*")
		if err != nil {
			return 0, fmt.Errorf("scan for count: %w", err)
		}
		return len(keys), nil
	}
	return s.Store.SearchCount(ctx, index, query)
}

func (s *Store) scanList(
	ctx context.Context, index string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	keys, err := s.Scan(ctx, indexToKeyPrefix(index)+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}
	sort.Strings(keys)

	total := len(keys)
	if offset >= total {
		return &db.SearchResult{Total: total}, nil
	}
	end := min(offset+limit, total)

	entries := make([]db.SearchEntry, 0, end-offset)
	for _, key := range keys[offset:end] {
		m, err := s.HGetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: pick(m, fields)})
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// pick keeps only the requested fields; no fields keeps everything.
func pick(m map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return m
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}
