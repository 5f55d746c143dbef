package db

import "fmt"

// StorageType is the document type an FT index covers. Courses are stored as hashes.
type StorageType string

// StorageHash indexes HASH keys.
const StorageHash StorageType = "HASH"

// DistanceMetric is the vector similarity metric of an FT vector field.
// Course embeddings are compared by cosine distance in [0,2].
type DistanceMetric string

// DistanceCosine reports 1 - cos(a, b).
const DistanceCosine DistanceMetric = "COSINE"

// VectorAlgorithm is the ANN structure behind a vector field.
type VectorAlgorithm string

// VectorHNSW builds a hierarchical navigable small world graph.
const VectorHNSW VectorAlgorithm = "HNSW"

// IndexFieldType enumerates the FT field kinds the course schema needs.
type IndexFieldType int

const (
	// IndexFieldNumeric supports range filters such as @level:[-inf 299].
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag supports exact-match filters such as @has_prerequisites:{false}.
	IndexFieldTag
	// IndexFieldVector holds the FLOAT32 embedding.
	IndexFieldVector
)

// IndexField describes one attribute of an FT schema.
type IndexField struct {
	Name  string
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	TagCaseSensitive bool

	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition is the input to FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate rejects definitions FT.CREATE would refuse or misinterpret.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("index %s has no fields", idx.Name)
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("index %s: field %d has no name", idx.Name, i)
		}
		attr := f.Name
		if f.Alias != "" {
			attr = f.Alias
		}
		if _, dup := seen[attr]; dup {
			return fmt.Errorf("index %s: duplicate field %s", idx.Name, attr)
		}
		seen[attr] = struct{}{}

		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return fmt.Errorf("index %s: vector field %s needs a positive DIM", idx.Name, attr)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s is non-empty and only uses [A-Za-z0-9_:-].
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}

// VectorField returns the embedding field, if any.
func (idx *IndexDefinition) VectorField() (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Type == IndexFieldVector {
			return f, true
		}
	}
	return IndexField{}, false
}
