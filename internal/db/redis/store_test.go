package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/pickmyelective/electives/internal/db"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestIsRedisErr(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	err := c.Do(context.Background(), c.B().Arbitrary("FT.INFO").Args("x").Build()).Error()
	if !isRedisErr(err, "unknown index name") {
		t.Error("expected case-insensitive match")
	}
	if isRedisErr(context.Canceled, "canceled") {
		t.Error("non-server errors must not match")
	}
}

// --- hash.go / kv.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HSET", "electives:c:cmpt-120", "level", "100")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.HSet(context.Background(), "electives:c:cmpt-120", map[string]string{"level": "100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_ErrorNamesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f": "v"}},
		{Key: "k2", Fields: map[string]string{"f": "v"}},
	})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpHSet {
		t.Fatalf("expected HSET db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "meta")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"dimensions": mock.RedisString("3072"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "meta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["dimensions"] != "3072" {
		t.Errorf("unexpected result: %v", m)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	tests := []struct {
		name   string
		ttl    time.Duration
		wantEx bool
	}{
		{"with expiry", time.Hour, true},
		{"no expiry", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
					return cmd[0] == "SET" && cmd[1] == "k" && cmd[2] == "v" &&
						slices.Contains(cmd, "EX") == tt.wantEx
				})).
				Return(mock.Result(mock.RedisString("OK")))

			s := NewStoreForTest(c)
			if err := s.SetWithTTL(context.Background(), "k", []byte("v"), tt.ttl); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// --- index.go tests ---

func courseIndexDef(t *testing.T) *db.IndexDefinition {
	t.Helper()
	def, err := db.NewIndex("electives:courses:idx").
		Prefix("electives:courses:").
		Numeric("level").
		Tag("has_prerequisites").
		VectorHNSW("__vector", "vector", 4, db.DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return def
}

func TestBuildCreateArgs(t *testing.T) {
	args, err := buildCreateArgs(courseIndexDef(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"electives:courses:idx", "ON", "HASH", "PREFIX", "1", "electives:courses:", "SCHEMA",
		"level", "NUMERIC",
		"has_prerequisites", "TAG", "CASESENSITIVE",
		"__vector", "AS", "vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "4", "DISTANCE_METRIC", "COSINE", "M", "16", "EF_CONSTRUCTION", "200",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args =\n%v\nwant\n%v", args, want)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), courseIndexDef(t)); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestDropIndex_DeleteDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx", "DD")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx", false); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "present")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("present")))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "absent")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
	)

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "present")
	if err != nil || !ok {
		t.Errorf("present: ok=%v err=%v", ok, err)
	}
	ok, err = s.IndexExists(context.Background(), "absent")
	if err != nil || ok {
		t.Errorf("absent: ok=%v err=%v", ok, err)
	}
}

func TestUpdateAlias(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.ALIASUPDATE", "electives:courses:idx", "electives:courses_v2:idx")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.UpdateAlias(context.Background(), "electives:courses:idx", "electives:courses_v2:idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("electives:courses:cmpt-120-2026su"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.3"),
				mock.RedisString("level"), mock.RedisString("100"),
			),
			mock.RedisString("electives:courses:phil-100w-2026su"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("1.2"),
				mock.RedisString("level"), mock.RedisString("100"),
			),
		)))

	lvl, _ := filter.Lte("level", 200)
	expr, _ := filter.And(lvl)

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "electives:courses:idx",
		Filters:      expr,
		Vector:       []float32{0.1, 0.2},
		K:            200,
		ReturnFields: []string{"level"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got[2] != "(@level:[-inf 200])=>[KNN 200 @vector $BLOB]" {
		t.Errorf("query = %q", got[2])
	}
	for _, part := range []string{"SORTBY", "DIALECT", "LIMIT"} {
		if !slices.Contains(got, part) {
			t.Errorf("command missing %s: %v", part, got)
		}
	}
	if i := slices.Index(got, "LIMIT"); got[i+2] != "200" {
		t.Errorf("LIMIT = %v, want 0 200", got[i+1:i+3])
	}

	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	// raw distances are passed through, no clamping at this layer
	if result.Entries[0].Distance != 0.3 || result.Entries[1].Distance != 1.2 {
		t.Errorf("distances = %v, %v", result.Entries[0].Distance, result.Entries[1].Distance)
	}
	if _, ok := result.Entries[0].Fields[ScoreField]; ok {
		t.Error("score field should be stripped from fields")
	}
}

func TestSearchKNN_MissingScore(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("doc:1"),
			mock.RedisArray(mock.RedisString("level"), mock.RedisString("100")),
		)))

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "idx", Vector: []float32{1}, K: 1})
	if err == nil {
		t.Fatal("expected error for hit without distance")
	}
}

func TestSearchKNN_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("idx: no such index")))
	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	q := &db.KNNQuery{IndexName: "idx", Vector: []float32{1}, K: 1}

	if _, err := s.SearchKNN(context.Background(), q); errors.Is(err, db.ErrIndexNotFound) {
		t.Error("unrelated server error mapped to ErrIndexNotFound")
	}
	if _, err := s.SearchKNN(context.Background(), q); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	bad := []*db.KNNQuery{
		{Vector: []float32{1}, K: 1},
		{IndexName: "idx", K: 1},
		{IndexName: "idx", Vector: []float32{1}},
	}
	for _, q := range bad {
		if _, err := s.SearchKNN(context.Background(), q); err == nil {
			t.Errorf("expected error for %+v", q)
		}
	}
}

func TestSearchCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*", "LIMIT", "0", "0")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	n, err := s.SearchCount(context.Background(), "idx", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

func TestBuildKNNQuery(t *testing.T) {
	lvl, _ := filter.Lte("level", 300)
	pre, _ := filter.EqBool("has_prerequisites", false)
	dept, _ := filter.Eq("department", "B-SCI")

	tests := []struct {
		name  string
		conds []filter.Condition
		want  string
	}{
		{"no filter", nil, "*=>[KNN 5 @vector $BLOB]"},
		{"level", []filter.Condition{lvl}, "(@level:[-inf 300])=>[KNN 5 @vector $BLOB]"},
		{
			"level and prereq",
			[]filter.Condition{lvl, pre},
			"(@level:[-inf 300] @has_prerequisites:{false})=>[KNN 5 @vector $BLOB]",
		},
		{"escaped tag", []filter.Condition{dept}, `(@department:{B\-SCI})=>[KNN 5 @vector $BLOB]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := filter.And(tt.conds...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := buildKNNQuery(expr, 5); got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	got, err := BytesToVector(VectorToBytes(v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, v) {
		t.Errorf("round trip = %v, want %v", got, v)
	}
	if _, err := BytesToVector("abc"); err == nil {
		t.Error("expected error for truncated blob")
	}
}
