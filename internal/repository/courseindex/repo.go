package courseindex

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/pickmyelective/electives/internal/db"
	dbRedis "github.com/pickmyelective/electives/internal/db/redis"
	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// store is the consumer interface for the course index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	UpdateAlias(ctx context.Context, alias, index string) error
	SupportsAliases(ctx context.Context) bool
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores courses as hashes behind an FT vector index on Valkey or Redis.
type Repo struct {
	store  store
	prefix string
	hnsw   HNSWConfig
	now    func() time.Time
}

// New creates a course index repository. keyPrefix namespaces every key.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix, hnsw: HNSWConfig{M: 16, EFConstruct: 200}, now: time.Now}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureCollection creates the collection if missing. With recreate the existing
// index and its documents are dropped first. An existing collection with a
// different dimensionality is an ErrVectorDimMismatch.
func (r *Repo) EnsureCollection(ctx context.Context, spec vectorindex.Spec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	idxName := r.indexName(spec.Name)

	if recreate {
		if err := r.store.DropIndex(ctx, idxName, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", idxName, err)
		}
		if err := r.store.Del(ctx, r.metaKey(spec.Name)); err != nil {
			return fmt.Errorf("del collection %s: %w", spec.Name, err)
		}
	} else {
		exists, err := r.store.IndexExists(ctx, idxName)
		if err != nil {
			return fmt.Errorf("check index exists: %w", err)
		}
		if exists {
			return r.checkDimensions(ctx, spec)
		}
	}

	def, err := r.buildIndex(spec.Name, spec.Dimensions)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	metaKey := r.metaKey(spec.Name)
	if err := r.store.HSet(ctx, metaKey, map[string]string{
		metaName:       spec.Name,
		metaDimensions: strconv.Itoa(spec.Dimensions),
		metaModel:      spec.Model,
		metaCreatedAt:  strconv.FormatInt(r.now().Unix(), 10),
	}); err != nil {
		return fmt.Errorf("hset collection %s: %w", spec.Name, err)
	}

	// FT.CREATE failed: roll back the metadata HSET
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}
	return nil
}

func (r *Repo) checkDimensions(ctx context.Context, spec vectorindex.Spec) error {
	meta, err := r.store.HGetAll(ctx, r.metaKey(spec.Name))
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", spec.Name, err)
	}
	if dim, _ := strconv.Atoi(meta[metaDimensions]); dim != 0 && dim != spec.Dimensions {
		return fmt.Errorf("%w: collection %s has %d dimensions, want %d",
			domain.ErrVectorDimMismatch, spec.Name, dim, spec.Dimensions)
	}
	return nil
}

// Upsert writes every entry in one pipelined round-trip. All fields are
// rewritten, so a repeated id replaces the previous content.
func (r *Repo) Upsert(ctx context.Context, collection string, entries []vectorindex.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		if e.Course.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", domain.ErrInvalidSchema, i)
		}
		fields := course.Flatten(e.Course)
		fields[fieldID] = e.Course.ID
		fields[fieldDocument] = e.Course.Document
		fields[fieldVector] = dbRedis.VectorToBytes(e.Vector)
		items[i] = db.HashSetItem{Key: r.docKey(collection, e.Course.ID), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d courses into %s: %w", len(entries), collection, err)
	}
	return nil
}

var returnFields = append([]string{fieldID, fieldDocument}, course.MetadataFields...)

// Query returns up to limit nearest courses satisfying native, ordered by
// ascending distance with ties broken by course id.
func (r *Repo) Query(
	ctx context.Context, collection string, vector []float32, native filter.Expression, limit int,
) ([]vectorindex.Hit, error) {
	target := collection
	if !r.store.SupportsAliases(ctx) {
		var err error
		if target, err = r.resolve(ctx, collection); err != nil {
			return nil, err
		}
	}
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(target),
		Filters:      native,
		Vector:       vector,
		K:            limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: collection %s", domain.ErrIndexUnavailable, collection)
		}
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	hits := make([]vectorindex.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := e.Fields[fieldID]
		c, err := course.Unflatten(id, e.Fields[fieldDocument], e.Fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		hits = append(hits, vectorindex.Hit{Course: c, Distance: e.Distance})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Course.ID < hits[j].Course.ID
	})
	return hits, nil
}

// Describe reports whether name (a collection or alias) can be served and what it holds.
func (r *Repo) Describe(ctx context.Context, name string) (vectorindex.Collection, error) {
	out := vectorindex.Collection{Name: name, Target: name}

	target, err := r.resolve(ctx, name)
	if err != nil {
		return out, err
	}
	out.Target = target

	// Without native aliases only the target index exists.
	checked := name
	if !r.store.SupportsAliases(ctx) {
		checked = out.Target
	}
	exists, err := r.store.IndexExists(ctx, r.indexName(checked))
	if err != nil {
		return out, fmt.Errorf("check index exists: %w", err)
	}
	if !exists {
		return out, nil
	}
	out.Exists = true

	meta, err := r.store.HGetAll(ctx, r.metaKey(out.Target))
	if err != nil {
		return out, fmt.Errorf("hgetall collection %s: %w", out.Target, err)
	}
	out.Dimensions, _ = strconv.Atoi(meta[metaDimensions])
	out.Model = meta[metaModel]
	if ts, err := strconv.ParseInt(meta[metaCreatedAt], 10, 64); err == nil {
		out.CreatedAt = time.Unix(ts, 0).UTC()
	}

	// Documents live under the target prefix whichever name was asked for.
	idxName := r.indexName(out.Target)
	if out.Count, err = r.store.SearchCount(ctx, idxName, "*"); err != nil {
		return out, fmt.Errorf("count %s: %w", name, err)
	}
	if out.Count > 0 {
		sample, err := r.store.SearchList(ctx, idxName, "*", 0, 1, returnFields)
		if err != nil {
			return out, fmt.Errorf("sample %s: %w", name, err)
		}
		if len(sample.Entries) > 0 {
			for k := range sample.Entries[0].Fields {
				if k != fieldID && k != fieldDocument {
					out.MetadataFields = append(out.MetadataFields, k)
				}
			}
			slices.Sort(out.MetadataFields)
		}
	}
	return out, nil
}

// resolve follows the alias hash to the collection it names; a plain collection resolves to itself.
func (r *Repo) resolve(ctx context.Context, name string) (string, error) {
	alias, err := r.store.HGetAll(ctx, r.aliasKey(name))
	if err != nil {
		return "", fmt.Errorf("hgetall alias %s: %w", name, err)
	}
	if t := alias[aliasTarget]; t != "" {
		return t, nil
	}
	return name, nil
}

// Swap atomically points alias at target so queries switch collections without a restart.
func (r *Repo) Swap(ctx context.Context, alias, target string) error {
	exists, err := r.store.IndexExists(ctx, r.indexName(target))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %s: %w", target, domain.ErrNotFound)
	}
	if r.store.SupportsAliases(ctx) {
		if err := r.store.UpdateAlias(ctx, r.indexName(alias), r.indexName(target)); err != nil {
			return fmt.Errorf("update alias %s: %w", alias, err)
		}
	}
	if err := r.store.HSet(ctx, r.aliasKey(alias), map[string]string{aliasTarget: target}); err != nil {
		return fmt.Errorf("hset alias %s: %w", alias, err)
	}
	return nil
}
