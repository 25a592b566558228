package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

// Search text-scores the top window candidates via FT.SEARCH WITHSCORES and
// ranks them with the query's scoring expression.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.Index == nil || q.Index.Name == "" {
		return nil, errors.New("index name is required")
	}
	if q.Query == nil {
		return nil, errors.New("query is required")
	}

	queryStr, err := buildQuery(q.Index, q.Query)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	window := q.Query.Window(q.Window)
	args := []string{
		q.Index.Name, queryStr,
		"WITHSCORES",
		"RETURN", "1", "$",
		"LIMIT", "0", strconv.Itoa(window),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	total, entries, err := parseScoredResult(q.Index, raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	ranked, err := db.Rank(entries, q.Query)
	if err != nil {
		return nil, err
	}
	return &db.SearchResult{Total: total, Entries: ranked}, nil
}

// Lookup returns the stored document of each id, nil where absent.
func (s *Store) Lookup(ctx context.Context, def *db.IndexDefinition, ids []string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = def.Key(id)
	}
	docs, err := s.JSONMGet(ctx, keys)
	if err != nil {
		return nil, &db.Error{Op: db.OpLookup, Err: err}
	}
	return docs, nil
}

// parseScoredResult reads [total, key1, score1, ["$", json1], key2, ...].
func parseScoredResult(def *db.IndexDefinition, raw []rueidis.RedisMessage) (int, []db.SearchEntry, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return 0, nil, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		score, err := raw[i+1].AsFloat64()
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		source := documentField(fields)
		if source == "" {
			continue
		}

		entries = append(entries, db.SearchEntry{
			ID:        def.ID(key),
			TextScore: score,
			Source:    []byte(source),
		})
	}

	return int(total), entries, nil
}

func documentField(fields []rueidis.RedisMessage) string {
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil || name != "$" {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			return ""
		}
		return value
	}
	return ""
}
