package chi

import (
	"math"

	"github.com/pickmyelective/electives/internal/domain/recommend"
)

type filtersBody struct {
	Campus             []string `json:"campus"`
	WQB                []string `json:"wqb"`
	MaxLevel           *int     `json:"max_level"`
	NoPrerequisites    *bool    `json:"no_prerequisites"`
	ExcludeDepartments []string `json:"exclude_departments"`
}

type recommendBody struct {
	Query        string       `json:"query"`
	Filters      *filtersBody `json:"filters"`
	TopK         *int         `json:"top_k"`
	MinRelevance *float64     `json:"min_relevance"`
}

type courseResult struct {
	CourseCode       string   `json:"course_code"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Campus           []string `json:"campus"`
	WQB              []string `json:"wqb"`
	Units            int      `json:"units"`
	Prerequisites    string   `json:"prerequisites"`
	HasPrerequisites bool     `json:"has_prerequisites"`
	Instructor       string   `json:"instructor"`
	DeliveryMethods  []string `json:"delivery_methods"`
	RelevanceScore   float64  `json:"relevance_score"`
	MatchReason      string   `json:"match_reason"`
}

type recommendResponse struct {
	Success             bool           `json:"success"`
	QueryInterpretation string         `json:"query_interpretation"`
	Courses             []courseResult `json:"courses"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (b recommendBody) toRequest() (recommend.Request, error) {
	var f recommend.Filters
	if b.Filters != nil {
		f = recommend.Filters{
			Campus:             b.Filters.Campus,
			WQB:                b.Filters.WQB,
			MaxLevel:           b.Filters.MaxLevel,
			NoPrerequisites:    b.Filters.NoPrerequisites != nil && *b.Filters.NoPrerequisites,
			ExcludeDepartments: b.Filters.ExcludeDepartments,
		}
	}
	return recommend.NewRequest(b.Query, f, b.TopK, b.MinRelevance)
}

func resultToResponse(res recommend.Result) recommendResponse {
	courses := make([]courseResult, len(res.Courses))
	for i, r := range res.Courses {
		c := r.Course
		courses[i] = courseResult{
			CourseCode:       c.Code,
			Title:            c.Title,
			Description:      c.Description,
			Campus:           nonNil(c.Campuses),
			WQB:              nonNil(c.WQB),
			Units:            c.Units,
			Prerequisites:    c.PrerequisitesRaw,
			HasPrerequisites: c.HasPrerequisites,
			Instructor:       c.FirstInstructor(),
			DeliveryMethods:  nonNil(c.DeliveryMethods),
			RelevanceScore:   math.Round(r.Relevance*1000) / 1000,
			MatchReason:      r.MatchReason,
		}
	}
	return recommendResponse{
		Success:             true,
		QueryInterpretation: res.Interpretation,
		Courses:             courses,
	}
}

// nonNil keeps empty lists as [] on the wire.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
