// Package pgindex stores the course index in PostgreSQL with pgvector.
package pgindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// Repo is a course index backed by one table per collection.
// Aliases are views over the target table.
type Repo struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, checks connectivity and prepares the registry table.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	r := &Repo{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	if _, err := r.pool.Exec(ctx, createRegistrySQL); err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *Repo) Close() {
	r.pool.Close()
}

// EnsureCollection creates the collection table if missing.
func (r *Repo) EnsureCollection(ctx context.Context, spec vectorindex.Spec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	table, err := tableName(spec.Name)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if recreate {
			if _, err := tx.Exec(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
				return fmt.Errorf("drop %s: %w", spec.Name, err)
			}
			if _, err := tx.Exec(ctx, `DELETE FROM `+registryTable+` WHERE name = $1`, spec.Name); err != nil {
				return fmt.Errorf("unregister %s: %w", spec.Name, err)
			}
		}

		var dim int
		err := tx.QueryRow(ctx, `SELECT dimensions FROM `+registryTable+` WHERE name = $1`, spec.Name).Scan(&dim)
		switch {
		case err == nil:
			if dim != spec.Dimensions {
				return fmt.Errorf("%w: collection %s has %d dimensions, want %d",
					domain.ErrVectorDimMismatch, spec.Name, dim, spec.Dimensions)
			}
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("read registry: %w", err)
		}

		if _, err := tx.Exec(ctx, createTableSQL(table, spec.Dimensions)); err != nil {
			return fmt.Errorf("create %s: %w", spec.Name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+registryTable+` (name, dimensions, model) VALUES ($1, $2, $3)`,
			spec.Name, spec.Dimensions, spec.Model,
		); err != nil {
			return fmt.Errorf("register %s: %w", spec.Name, err)
		}
		return nil
	})
}

// Upsert writes every entry in one batch.
func (r *Repo) Upsert(ctx context.Context, collection string, entries []vectorindex.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	table, err := tableName(collection)
	if err != nil {
		return err
	}
	stmt := upsertSQL(table)

	batch := &pgx.Batch{}
	for i, e := range entries {
		if e.Course.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", domain.ErrInvalidSchema, i)
		}
		meta, err := json.Marshal(course.Flatten(e.Course))
		if err != nil {
			return fmt.Errorf("marshal metadata %s: %w", e.Course.ID, err)
		}
		batch.Queue(stmt,
			e.Course.ID, e.Course.Document, meta,
			e.Course.Level, e.Course.HasPrerequisites, e.Course.Department,
			pgvector.NewVector(e.Vector),
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d courses into %s: %w", len(entries), collection, mapErr(err))
	}
	return nil
}

// Query returns up to limit nearest courses satisfying native, ordered by
// ascending cosine distance with ties broken by id.
func (r *Repo) Query(
	ctx context.Context, collection string, vector []float32, native filter.Expression, limit int,
) ([]vectorindex.Hit, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}
	sql, args, err := buildQuery(table, native, limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, sql, append([]any{pgvector.NewVector(vector)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, mapErr(err))
	}
	defer rows.Close()

	var hits []vectorindex.Hit
	for rows.Next() {
		var (
			id, doc string
			meta    []byte
			dist    float64
		)
		if err := rows.Scan(&id, &doc, &meta, &dist); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var fields map[string]string
		if err := json.Unmarshal(meta, &fields); err != nil {
			return nil, fmt.Errorf("%w: metadata of %s: %v", domain.ErrInvalidSchema, id, err)
		}
		c, err := course.Unflatten(id, doc, fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", id, err)
		}
		hits = append(hits, vectorindex.Hit{Course: c, Distance: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, mapErr(err))
	}
	return hits, nil
}

// Describe reports the state of a collection or alias.
func (r *Repo) Describe(ctx context.Context, name string) (vectorindex.Collection, error) {
	out := vectorindex.Collection{Name: name, Target: name}
	table, err := tableName(name)
	if err != nil {
		return out, err
	}

	var (
		target    *string
		createdAt time.Time
	)
	err = r.pool.QueryRow(ctx,
		`SELECT dimensions, model, created_at, target FROM `+registryTable+` WHERE name = $1`, name,
	).Scan(&out.Dimensions, &out.Model, &createdAt, &target)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("read registry: %w", err)
	}
	out.CreatedAt = createdAt.UTC()
	if target != nil && *target != "" {
		out.Target = *target
	}

	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&out.Count); err != nil {
		return out, fmt.Errorf("count %s: %w", name, mapErr(err))
	}
	out.Exists = true

	if out.Count > 0 {
		var meta []byte
		if err := r.pool.QueryRow(ctx, `SELECT metadata FROM `+table+` ORDER BY id LIMIT 1`).Scan(&meta); err != nil {
			return out, fmt.Errorf("sample %s: %w", name, err)
		}
		var fields map[string]string
		if err := json.Unmarshal(meta, &fields); err == nil {
			for k := range fields {
				out.MetadataFields = append(out.MetadataFields, k)
			}
			slices.Sort(out.MetadataFields)
		}
	}
	return out, nil
}

// Swap repoints alias at target by replacing the alias view.
func (r *Repo) Swap(ctx context.Context, alias, target string) error {
	aliasView, err := tableName(alias)
	if err != nil {
		return err
	}
	targetTable, err := tableName(target)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var dim int
		var model string
		err := tx.QueryRow(ctx,
			`SELECT dimensions, model FROM `+registryTable+` WHERE name = $1 AND target IS NULL`, target,
		).Scan(&dim, &model)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", target, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read registry: %w", err)
		}

		if _, err := tx.Exec(ctx, `CREATE OR REPLACE VIEW `+aliasView+` AS SELECT * FROM `+targetTable); err != nil {
			return fmt.Errorf("replace view %s: %w", alias, mapErr(err))
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO `+registryTable+` (name, dimensions, model, target) VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET dimensions = EXCLUDED.dimensions,
				model = EXCLUDED.model, target = EXCLUDED.target, created_at = now()`,
			alias, dim, model, target,
		); err != nil {
			return fmt.Errorf("register alias %s: %w", alias, err)
		}
		return nil
	})
}

// mapErr translates a missing relation into ErrIndexUnavailable.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, pgErr.Message)
	}
	return err
}
