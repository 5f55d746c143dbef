package course

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pickmyelective/electives/internal/domain"
)

// Corpus is one semester of transformed courses produced by the corpus builder.
type Corpus struct {
	Semester     string
	SemesterName string
	Courses      []Course
}

type corpusFile struct {
	Semester     string         `json:"semester"`
	SemesterName string         `json:"semester_name"`
	TotalCourses int            `json:"total_courses"`
	Courses      []corpusCourse `json:"courses"`
}

type corpusCourse struct {
	ID         string         `json:"id"`
	CourseCode string         `json:"course_code"`
	Title      string         `json:"title"`
	Document   string         `json:"document"`
	Keywords   []string       `json:"keywords"`
	Metadata   corpusMetadata `json:"metadata"`
}

type corpusMetadata struct {
	Department        string   `json:"department"`
	Level             int      `json:"level"`
	Units             int      `json:"units"`
	Campuses          []string `json:"campuses"`
	WQB               []string `json:"wqb"`
	HasWQB            bool     `json:"has_wqb"`
	HasPrerequisites  bool     `json:"has_prerequisites"`
	PrerequisiteLevel string   `json:"prerequisite_level"`
	PrerequisitesRaw  string   `json:"prerequisites_raw"`
	DeliveryMethods   []string `json:"delivery_methods"`
	Instructors       []string `json:"instructors"`
	Sections          []string `json:"sections"`
	ElectiveScore     int      `json:"elective_score"`
	TotalCapacity     int      `json:"total_capacity"`
}

// LoadCorpusFile reads a transformed-courses JSON file.
func LoadCorpusFile(path string) (Corpus, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Corpus{}, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	return DecodeCorpus(f)
}

// DecodeCorpus parses a transformed-courses JSON document and validates every course.
func DecodeCorpus(r io.Reader) (Corpus, error) {
	var raw corpusFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Corpus{}, fmt.Errorf("%w: decode corpus: %v", domain.ErrInvalidSchema, err)
	}

	out := Corpus{
		Semester:     raw.Semester,
		SemesterName: raw.SemesterName,
		Courses:      make([]Course, 0, len(raw.Courses)),
	}
	for _, rc := range raw.Courses {
		c := rc.toCourse(raw.Semester)
		if err := c.Validate(); err != nil {
			return Corpus{}, err
		}
		out.Courses = append(out.Courses, c)
	}
	return out, nil
}

func (rc corpusCourse) toCourse(semester string) Course {
	m := rc.Metadata
	id := rc.ID
	if id == "" && rc.CourseCode != "" {
		id = DocumentID(rc.CourseCode, semester)
	}
	level := PrerequisiteLevel(m.PrerequisiteLevel)
	if level == "" {
		level = PrereqNone
	}
	return Course{
		ID:                id,
		Code:              rc.CourseCode,
		Title:             rc.Title,
		Document:          rc.Document,
		Description:       DescriptionFromDocument(rc.Document),
		Department:        m.Department,
		Level:             m.Level,
		Units:             m.Units,
		Campuses:          m.Campuses,
		WQB:               m.WQB,
		DeliveryMethods:   m.DeliveryMethods,
		Instructors:       m.Instructors,
		Sections:          m.Sections,
		Keywords:          rc.Keywords,
		PrerequisitesRaw:  m.PrerequisitesRaw,
		PrerequisiteLevel: level,
		HasPrerequisites:  m.HasPrerequisites,
		HasWQB:            m.HasWQB || len(m.WQB) > 0,
		ElectiveScore:     m.ElectiveScore,
		TotalCapacity:     m.TotalCapacity,
	}
}
