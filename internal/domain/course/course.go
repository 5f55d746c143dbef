package course

import (
	"fmt"

	"github.com/pickmyelective/electives/internal/domain"
)

// MaxElectiveScore is the upper bound of the upstream elective-friendliness score.
const MaxElectiveScore = 25

// PrerequisiteLevel describes how strongly a course gates enrollment.
type PrerequisiteLevel string

const (
	// PrereqNone means open enrollment.
	PrereqNone PrerequisiteLevel = "none"
	// PrereqRecommended means prior coursework is suggested but not enforced.
	PrereqRecommended PrerequisiteLevel = "recommended"
	// PrereqRequired means prior coursework is enforced.
	PrereqRequired PrerequisiteLevel = "required"
)

// Valid reports whether l is a known prerequisite level.
func (l PrerequisiteLevel) Valid() bool {
	switch l {
	case PrereqNone, PrereqRecommended, PrereqRequired:
		return true
	}
	return false
}

// WQB designation codes.
const (
	WQBQuantitative = "Q"
	WQBWriting      = "W"
	WQBScience      = "B-Sci"
	WQBSocial       = "B-Soc"
	WQBHumanities   = "B-Hum"
)

// IsWQBCode reports whether code is one of the designation codes.
func IsWQBCode(code string) bool {
	switch code {
	case WQBQuantitative, WQBWriting, WQBScience, WQBSocial, WQBHumanities:
		return true
	}
	return false
}

// Course is the canonical structured course record. Lists stay lists here;
// delimiter-joined strings only exist inside Flatten/Unflatten.
type Course struct {
	ID                string
	Code              string
	Title             string
	Description       string
	Document          string // exact text that was embedded
	Department        string
	Level             int
	Units             int
	Campuses          []string
	WQB               []string
	DeliveryMethods   []string
	Instructors       []string
	Sections          []string
	Keywords          []string
	PrerequisitesRaw  string
	PrerequisiteLevel PrerequisiteLevel
	HasPrerequisites  bool
	HasWQB            bool
	ElectiveScore     int
	TotalCapacity     int
}

// Validate checks the invariants an indexable course must hold.
func (c Course) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: course id is required", domain.ErrInvalidSchema)
	}
	if c.Code == "" {
		return fmt.Errorf("%w: course %s: code is required", domain.ErrInvalidSchema, c.ID)
	}
	if c.ElectiveScore < 0 || c.ElectiveScore > MaxElectiveScore {
		return fmt.Errorf("%w: course %s: elective score %d outside [0,%d]",
			domain.ErrInvalidSchema, c.ID, c.ElectiveScore, MaxElectiveScore)
	}
	if c.PrerequisiteLevel != "" && !c.PrerequisiteLevel.Valid() {
		return fmt.Errorf("%w: course %s: unknown prerequisite level %q",
			domain.ErrInvalidSchema, c.ID, c.PrerequisiteLevel)
	}
	for _, w := range c.WQB {
		if !IsWQBCode(w) {
			return fmt.Errorf("%w: course %s: unknown WQB code %q", domain.ErrInvalidSchema, c.ID, w)
		}
	}
	return nil
}

// FirstInstructor returns the first listed instructor or "".
func (c Course) FirstInstructor() string {
	if len(c.Instructors) == 0 {
		return ""
	}
	return c.Instructors[0]
}
