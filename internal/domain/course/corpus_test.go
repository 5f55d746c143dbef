package course

import (
	"errors"
	"strings"
	"testing"

	"github.com/pickmyelective/electives/internal/domain"
)

const corpusJSON = `{
  "semester": "1264",
  "semester_name": "Summer 2026",
  "total_courses": 2,
  "courses": [
    {
      "id": "cmpt-120-2026su",
      "course_code": "CMPT 120",
      "title": "Intro to Programming",
      "document": "CMPT 120 - Intro to Programming\nDepartment: CMPT | Level: 100 | Units: 3\nWQB: None | Prerequisites: None\n\nLearn to program.",
      "keywords": ["coding"],
      "metadata": {
        "department": "CMPT", "level": 100, "units": 3,
        "campuses": ["Burnaby", "Surrey"], "wqb": [],
        "has_prerequisites": false, "prerequisite_level": "none",
        "elective_score": 15, "total_capacity": 300
      }
    },
    {
      "course_code": "PSYC 100",
      "title": "Intro Psych",
      "document": "",
      "metadata": {"department": "PSYC", "level": 100, "wqb": ["B-Soc"], "elective_score": 20}
    }
  ]
}`

func TestDecodeCorpus(t *testing.T) {
	c, err := DecodeCorpus(strings.NewReader(corpusJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Semester != "1264" || c.SemesterName != "Summer 2026" {
		t.Errorf("semester = %q/%q", c.Semester, c.SemesterName)
	}
	if len(c.Courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(c.Courses))
	}

	first := c.Courses[0]
	if first.Description != "Learn to program." {
		t.Errorf("description = %q", first.Description)
	}
	if len(first.Campuses) != 2 || first.ElectiveScore != 15 {
		t.Errorf("first = %+v", first)
	}

	second := c.Courses[1]
	if second.ID != "psyc-100-2026su" {
		t.Errorf("derived id = %q, want psyc-100-2026su", second.ID)
	}
	if !second.HasWQB {
		t.Error("has_wqb should follow a non-empty wqb list")
	}
	if second.Document != "" {
		t.Errorf("document = %q, want empty", second.Document)
	}
}

func TestDecodeCorpus_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad json":       `{"courses": [`,
		"score too high": `{"semester":"1264","courses":[{"id":"a","course_code":"A 1","metadata":{"elective_score":30}}]}`,
		"unknown wqb":    `{"semester":"1264","courses":[{"id":"a","course_code":"A 1","metadata":{"wqb":["Z"]}}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeCorpus(strings.NewReader(doc)); !errors.Is(err, domain.ErrInvalidSchema) {
				t.Errorf("error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}
