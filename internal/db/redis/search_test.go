package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

func hit(key, score, source string) []rueidis.RedisMessage {
	return []rueidis.RedisMessage{
		mock.RedisString(key),
		mock.RedisString(score),
		mock.RedisArray(mock.RedisString("$"), mock.RedisString(source)),
	}
}

func searchReply(total int64, hits ...[]rueidis.RedisMessage) rueidis.RedisResult {
	msgs := []rueidis.RedisMessage{mock.RedisInt64(total)}
	for _, h := range hits {
		msgs = append(msgs, h...)
	}
	return mock.Result(mock.RedisArray(msgs...))
}

func TestSearch_RanksExactMatchFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "pkg-idx" &&
				cmd[3] == "WITHSCORES" && cmd[len(cmd)-1] == "2"
		})).
		Return(searchReply(2,
			hit("pkg:react-dom", "9.5", `{"name":"react-dom","score":{"detail":{"quality":0.9,"popularity":0.9,"maintenance":0.9}}}`),
			hit("pkg:react", "3.1", `{"name":"react","score":{"detail":{"quality":0.5,"popularity":0.5,"maintenance":0.5}}}`),
		))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		Index:  testIndex(),
		Query:  compileQuery(t, "react"),
		Window: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected total 2, got %d", res.Total)
	}
	if res.Entries[0].ID != "react" {
		t.Errorf("expected react first, got %s", res.Entries[0].ID)
	}
	if res.Entries[1].TextScore != 9.5 {
		t.Errorf("expected text score 9.5, got %v", res.Entries[1].TextScore)
	}
}

func TestSearch_WindowCoversPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			for i := 0; i+2 < len(cmd); i++ {
				if cmd[i] == "LIMIT" {
					return cmd[i+1] == "0" && cmd[i+2] == "25"
				}
			}
			return false
		})).
		Return(searchReply(0))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		Index: testIndex(),
		Query: compileQuery(t, "react"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearch_IndexMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("pkg-idx: no such index")))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: testIndex(), Query: compileQuery(t, "react")})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: testIndex(), Query: compileQuery(t, "react")})
	if !isDBError(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	if _, err := s.Search(ctx, &db.SearchQuery{Query: compileQuery(t, "react")}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.Search(ctx, &db.SearchQuery{Index: testIndex()}); err == nil {
		t.Error("expected error for missing query")
	}
}

func TestLookup_KeysUnderPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("JSON.GET", "pkg:react"),
			mock.Match("JSON.GET", "pkg:nope"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString(`{"name":"react"}`)),
			mock.Result(mock.RedisNil()),
		})

	s := NewStoreForTest(c)
	docs, err := s.Lookup(context.Background(), testIndex(), []string{"react", "nope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(docs[0]) != `{"name":"react"}` || docs[1] != nil {
		t.Errorf("unexpected docs: %q", docs)
	}
}

func TestParseScoredResult_SkipsMalformed(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(2),
		mock.RedisString("pkg:a"),
		mock.RedisString("not-a-number"),
		mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{}`)),
		mock.RedisString("pkg:b"),
		mock.RedisString("1.5"),
		mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"name":"b"}`)),
	}
	total, entries, err := parseScoredResult(testIndex(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(entries) != 1 || entries[0].ID != "b" || entries[0].TextScore != 1.5 {
		t.Errorf("entries = %+v", entries)
	}
}
