// Package coursetest provides a small fixed course corpus for tests.
package coursetest

import "github.com/pickmyelective/electives/internal/domain/course"

// Fixture course ids.
const (
	CMPT120 = "cmpt-120-2026su"
	PSYC100 = "psyc-100-2026su"
	MACM101 = "macm-101-2026su"
	PHIL100 = "phil-100w-2026su"
)

// Courses returns four offerings covering every filter dimension, with
// documents rendered by course.FormatDocument.
func Courses() []course.Course {
	cs := []course.Course{
		{
			ID:                CMPT120,
			Code:              "CMPT 120",
			Title:             "Introduction to Computing Science and Programming I",
			Description:       "An elementary introduction to computing science and computer programming.",
			Department:        "CMPT",
			Level:             100,
			Units:             3,
			Campuses:          []string{"Burnaby", "Surrey"},
			DeliveryMethods:   []string{"In Person"},
			Instructors:       []string{"Dr. Smith"},
			Sections:          []string{"D100"},
			Keywords:          []string{"programming", "python", "problem solving"},
			PrerequisiteLevel: course.PrereqNone,
			ElectiveScore:     15,
			TotalCapacity:     300,
		},
		{
			ID:                PSYC100,
			Code:              "PSYC 100",
			Title:             "Introduction to Psychology I",
			Description:       "Psychology as a natural science: research methods, the brain, perception and learning.",
			Department:        "PSYC",
			Level:             100,
			Units:             3,
			Campuses:          []string{"Burnaby"},
			WQB:               []string{course.WQBSocial},
			DeliveryMethods:   []string{"In Person"},
			Instructors:       []string{"Dr. Jones"},
			Sections:          []string{"D100", "D200"},
			Keywords:          []string{"psychology", "human behavior"},
			PrerequisiteLevel: course.PrereqNone,
			HasWQB:            true,
			ElectiveScore:     20,
			TotalCapacity:     400,
		},
		{
			ID:                MACM101,
			Code:              "MACM 101",
			Title:             "Discrete Mathematics I",
			Description:       "Introduction to graph theory, trees, induction and counting.",
			Department:        "MACM",
			Level:             100,
			Units:             3,
			Campuses:          []string{"Burnaby"},
			WQB:               []string{course.WQBQuantitative},
			DeliveryMethods:   []string{"In Person"},
			Instructors:       []string{"Dr. Brown"},
			Sections:          []string{"D100"},
			Keywords:          []string{"mathematics", "logic"},
			PrerequisitesRaw:  "MATH 100",
			PrerequisiteLevel: course.PrereqRequired,
			HasPrerequisites:  true,
			HasWQB:            true,
			ElectiveScore:     12,
			TotalCapacity:     200,
		},
		{
			ID:                PHIL100,
			Code:              "PHIL 100W",
			Title:             "Knowledge and Reality",
			Description:       "An introduction to some of the central problems of philosophy.",
			Department:        "PHIL",
			Level:             100,
			Units:             3,
			Campuses:          []string{"Burnaby", "Vancouver"},
			WQB:               []string{course.WQBWriting, course.WQBHumanities},
			DeliveryMethods:   []string{"In Person", "Online"},
			Instructors:       []string{"Dr. Wilson"},
			Sections:          []string{"D100", "OL01"},
			Keywords:          []string{"philosophy", "critical thinking", "writing"},
			PrerequisiteLevel: course.PrereqNone,
			HasWQB:            true,
			ElectiveScore:     25,
			TotalCapacity:     150,
		},
	}
	for i := range cs {
		cs[i].Document = course.FormatDocument(cs[i])
	}
	return cs
}

// Distances are the cosine distances a fake index reports for every fixture
// course, in ascending order.
var Distances = map[string]float64{
	CMPT120: 0.30,
	PSYC100: 0.35,
	MACM101: 0.40,
	PHIL100: 0.45,
}
