package recommend

import (
	"fmt"
	"slices"

	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
)

// Filters is the user-supplied constraint set. Every field is optional;
// absence means no constraint on that dimension.
type Filters struct {
	Campus             []string
	WQB                []string
	MaxLevel           *int
	NoPrerequisites    bool
	ExcludeDepartments []string
}

// HasListFilters reports whether any post-retrieval filter is active.
func (f Filters) HasListFilters() bool {
	return len(f.Campus) > 0 || len(f.WQB) > 0 || len(f.ExcludeDepartments) > 0
}

// HasScalarFilters reports whether any index-native filter is active.
func (f Filters) HasScalarFilters() bool {
	return f.MaxLevel != nil || f.NoPrerequisites
}

// Native compiles the scalar constraints into the index's native predicate language.
func (f Filters) Native() (filter.Expression, error) {
	var conds []filter.Condition
	if f.MaxLevel != nil {
		c, err := filter.Lte(course.FieldLevel, float64(*f.MaxLevel))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("max level filter: %w", err)
		}
		conds = append(conds, c)
	}
	if f.NoPrerequisites {
		c, err := filter.EqBool(course.FieldHasPrerequisites, false)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("prerequisites filter: %w", err)
		}
		conds = append(conds, c)
	}
	return filter.And(conds...)
}

// Admit applies the list constraints the index cannot evaluate. Each active
// list filter needs at least one overlapping value; active filters are ANDed.
// A course whose department is excluded is always dropped.
func (f Filters) Admit(c course.Course) bool {
	if len(f.Campus) > 0 && !intersects(c.Campuses, f.Campus) {
		return false
	}
	if len(f.WQB) > 0 && !intersects(c.WQB, f.WQB) {
		return false
	}
	if len(f.ExcludeDepartments) > 0 && slices.Contains(f.ExcludeDepartments, c.Department) {
		return false
	}
	return true
}

func intersects(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
