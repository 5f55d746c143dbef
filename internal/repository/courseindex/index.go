package courseindex

import (
	"github.com/pickmyelective/electives/internal/db"
	"github.com/pickmyelective/electives/internal/domain/course"
)

// buildIndex declares the natively filterable fields and the cosine HNSW vector.
// List-valued metadata is stored on the hash but never indexed.
func (r *Repo) buildIndex(name string, dim int) (*db.IndexDefinition, error) {
	return db.NewIndex(r.indexName(name)).
		Prefix(r.docPrefix(name)).
		Numeric(course.FieldLevel).
		Tag(course.FieldHasPrerequisites).
		Tag(course.FieldDepartment).
		Numeric(course.FieldElectiveScore).
		VectorHNSW(fieldVector, vectorAlias, dim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
}
