// Package vectorindex holds the backend-neutral types exchanged with course index repositories.
package vectorindex

import (
	"fmt"
	"time"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
)

// Entry is one course with its embedding, ready to upsert.
type Entry struct {
	Course course.Course
	Vector []float32
}

// Hit is one nearest-neighbour match. Distance is the raw cosine distance.
type Hit struct {
	Course   course.Course
	Distance float64
}

// Spec describes a collection to create.
type Spec struct {
	Name       string
	Dimensions int
	Model      string
}

// Validate checks required fields.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: collection name is required", domain.ErrInvalidSchema)
	}
	if s.Dimensions <= 0 {
		return fmt.Errorf("%w: collection dimensions must be positive", domain.ErrInvalidSchema)
	}
	return nil
}

// Collection is the observed state of a served collection or alias.
type Collection struct {
	Name           string
	Target         string // physical collection when Name is an alias, else Name
	Exists         bool
	Dimensions     int
	Model          string
	CreatedAt      time.Time
	Count          int
	MetadataFields []string
}
