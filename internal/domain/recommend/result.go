package recommend

import (
	"strings"

	"github.com/pickmyelective/electives/internal/domain/course"
)

// Interpretation is the topic set extracted from a raw query.
type Interpretation struct {
	Topics   []string
	Summary  string
	Fallback bool // true when the model output could not be used
}

// FallbackInterpretation is used whenever the model output is unusable.
func FallbackInterpretation(query string) Interpretation {
	return Interpretation{
		Topics:   []string{query},
		Summary:  "Looking for courses related to: " + query,
		Fallback: true,
	}
}

// SearchText is the text that gets embedded for retrieval.
func (i Interpretation) SearchText() string {
	return strings.Join(i.Topics, " ")
}

// Candidate is one scored retrieval hit. Never persisted.
type Candidate struct {
	Course    course.Course
	Relevance float64
	Combined  float64
	Rank      int // position in the index response, used as the tie-break
}

// Recommendation is a surfaced course with its explanation.
type Recommendation struct {
	Course      course.Course
	Relevance   float64
	MatchReason string
}

// Result is the terminal output of one recommendation request.
type Result struct {
	Interpretation string
	Courses        []Recommendation
}
