package pgindex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
)

const registryTable = "electives_collections"

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// tableName maps a collection name to a quoted table identifier.
func tableName(collection string) (string, error) {
	if !identRe.MatchString(collection) {
		return "", fmt.Errorf("%w: collection name %q must match %s", domain.ErrInvalidSchema, collection, identRe)
	}
	return `"` + collection + `"`, nil
}

const createRegistrySQL = `CREATE TABLE IF NOT EXISTS ` + registryTable + ` (
	name        TEXT PRIMARY KEY,
	dimensions  INTEGER NOT NULL,
	model       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	target      TEXT
)`

// createTableSQL has no ANN index: ivfflat and hnsw cap out at 2000 dimensions,
// and the catalogue is small enough to scan exactly.
func createTableSQL(table string, dim int) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	id                 TEXT PRIMARY KEY,
	document           TEXT NOT NULL,
	metadata           JSONB NOT NULL,
	level              INTEGER NOT NULL,
	has_prerequisites  BOOLEAN NOT NULL,
	department         TEXT NOT NULL,
	embedding          vector(` + strconv.Itoa(dim) + `) NOT NULL
)`
}

func upsertSQL(table string) string {
	return `INSERT INTO ` + table + ` (id, document, metadata, level, has_prerequisites, department, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	document = EXCLUDED.document,
	metadata = EXCLUDED.metadata,
	level = EXCLUDED.level,
	has_prerequisites = EXCLUDED.has_prerequisites,
	department = EXCLUDED.department,
	embedding = EXCLUDED.embedding`
}

// buildQuery renders a nearest-neighbour query with the native predicate as a
// WHERE clause. Parameter $1 is the query vector; filter operands follow.
func buildQuery(table string, expr filter.Expression, limit int) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args)+1)
	}

	for _, c := range expr.Conditions() {
		switch c.Op() {
		case filter.OpLte:
			col, ok := numericColumn(c.Key())
			if !ok {
				return "", nil, fmt.Errorf("%w: field %s is not numeric", domain.ErrInvalidQuery, c.Key())
			}
			where = append(where, col+" <= "+next(c.Number()))
		case filter.OpEq:
			switch c.Key() {
			case course.FieldHasPrerequisites:
				b, err := strconv.ParseBool(c.Value())
				if err != nil {
					return "", nil, fmt.Errorf("%w: %s must be boolean", domain.ErrInvalidQuery, c.Key())
				}
				where = append(where, "has_prerequisites = "+next(b))
			case course.FieldDepartment:
				where = append(where, "department = "+next(c.Value()))
			default:
				where = append(where, "metadata->>"+quoteLiteral(c.Key())+" = "+next(c.Value()))
			}
		default:
			return "", nil, fmt.Errorf("%w: unsupported operator %s", domain.ErrInvalidQuery, c.Op())
		}
	}

	var b strings.Builder
	b.WriteString("SELECT id, document, metadata, embedding <=> $1 AS distance FROM ")
	b.WriteString(table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY distance, id LIMIT ")
	b.WriteString(strconv.Itoa(limit))
	return b.String(), args, nil
}

func numericColumn(key string) (string, bool) {
	switch key {
	case course.FieldLevel:
		return "level", true
	case course.FieldUnits, course.FieldElectiveScore, course.FieldTotalCapacity:
		return "(metadata->>" + quoteLiteral(key) + ")::numeric", true
	}
	return "", false
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
