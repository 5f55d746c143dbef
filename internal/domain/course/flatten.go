package course

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pickmyelective/electives/internal/domain"
)

// Flat metadata field names stored per course in the index.
const (
	FieldCourseCode        = "course_code"
	FieldTitle             = "title"
	FieldDepartment        = "department"
	FieldLevel             = "level"
	FieldUnits             = "units"
	FieldElectiveScore     = "elective_score"
	FieldTotalCapacity     = "total_capacity"
	FieldHasWQB            = "has_wqb"
	FieldHasPrerequisites  = "has_prerequisites"
	FieldCampuses          = "campuses"
	FieldWQB               = "wqb"
	FieldDeliveryMethods   = "delivery_methods"
	FieldPrerequisiteLevel = "prerequisite_level"
	FieldPrerequisitesRaw  = "prerequisites_raw"
	FieldInstructors       = "instructors"
	FieldSections          = "sections"
	FieldKeywords          = "keywords"
)

// MetadataFields lists every flat field in storage order.
var MetadataFields = []string{
	FieldCourseCode, FieldTitle, FieldDepartment, FieldLevel, FieldUnits,
	FieldElectiveScore, FieldTotalCapacity, FieldHasWQB, FieldHasPrerequisites,
	FieldCampuses, FieldWQB, FieldDeliveryMethods, FieldPrerequisiteLevel,
	FieldPrerequisitesRaw, FieldInstructors, FieldSections, FieldKeywords,
}

const listSep = ","

// Flatten serializes a course into the flat string map the index stores.
// Multi-valued attributes are comma-joined; numbers and booleans are decimal/"true"/"false".
func Flatten(c Course) map[string]string {
	prereq := c.PrerequisiteLevel
	if prereq == "" {
		prereq = PrereqNone
	}
	return map[string]string{
		FieldCourseCode:        c.Code,
		FieldTitle:             c.Title,
		FieldDepartment:        c.Department,
		FieldLevel:             strconv.Itoa(c.Level),
		FieldUnits:             strconv.Itoa(c.Units),
		FieldElectiveScore:     strconv.Itoa(c.ElectiveScore),
		FieldTotalCapacity:     strconv.Itoa(c.TotalCapacity),
		FieldHasWQB:            strconv.FormatBool(c.HasWQB),
		FieldHasPrerequisites:  strconv.FormatBool(c.HasPrerequisites),
		FieldCampuses:          strings.Join(c.Campuses, listSep),
		FieldWQB:               strings.Join(c.WQB, listSep),
		FieldDeliveryMethods:   strings.Join(c.DeliveryMethods, listSep),
		FieldPrerequisiteLevel: string(prereq),
		FieldPrerequisitesRaw:  c.PrerequisitesRaw,
		FieldInstructors:       strings.Join(c.Instructors, listSep),
		FieldSections:          strings.Join(c.Sections, listSep),
		FieldKeywords:          strings.Join(c.Keywords, listSep),
	}
}

// Unflatten rebuilds a course from an index hit. Missing fields take zero values;
// malformed numbers or booleans are reported as ErrInvalidSchema.
func Unflatten(id, document string, fields map[string]string) (Course, error) {
	c := Course{
		ID:                id,
		Document:          document,
		Description:       DescriptionFromDocument(document),
		Code:              fields[FieldCourseCode],
		Title:             fields[FieldTitle],
		Department:        fields[FieldDepartment],
		Campuses:          SplitList(fields[FieldCampuses]),
		WQB:               SplitList(fields[FieldWQB]),
		DeliveryMethods:   SplitList(fields[FieldDeliveryMethods]),
		Instructors:       SplitList(fields[FieldInstructors]),
		Sections:          SplitList(fields[FieldSections]),
		Keywords:          SplitList(fields[FieldKeywords]),
		PrerequisiteLevel: PrerequisiteLevel(fields[FieldPrerequisiteLevel]),
		PrerequisitesRaw:  fields[FieldPrerequisitesRaw],
	}
	if c.PrerequisiteLevel == "" {
		c.PrerequisiteLevel = PrereqNone
	}

	var err error
	ints := []struct {
		name string
		dst  *int
	}{
		{FieldLevel, &c.Level},
		{FieldUnits, &c.Units},
		{FieldElectiveScore, &c.ElectiveScore},
		{FieldTotalCapacity, &c.TotalCapacity},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(fields, f.name); err != nil {
			return Course{}, err
		}
	}
	if c.HasWQB, err = parseBool(fields, FieldHasWQB); err != nil {
		return Course{}, err
	}
	if c.HasPrerequisites, err = parseBool(fields, FieldHasPrerequisites); err != nil {
		return Course{}, err
	}

	return c, nil
}

// SplitList splits a comma-joined field, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, listSep)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(fields map[string]string, name string) (int, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return 0, nil
	}
	// Some backends hand numbers back as floats ("100.0").
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s: %q is not a number", domain.ErrInvalidSchema, name, v)
	}
	return int(f), nil
}

func parseBool(fields map[string]string, name string) (bool, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: field %s: %q is not a boolean", domain.ErrInvalidSchema, name, v)
	}
	return b, nil
}
