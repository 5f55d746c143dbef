package recommend

import (
	"testing"

	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/course/coursetest"
	"github.com/pickmyelective/electives/internal/domain/search/filter"
)

func intPtr(v int) *int { return &v }

func admitted(f Filters) []string {
	var ids []string
	for _, c := range coursetest.Courses() {
		if f.Admit(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func TestFilters_Admit(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"no filters", Filters{}, []string{coursetest.CMPT120, coursetest.PSYC100, coursetest.MACM101, coursetest.PHIL100}},
		{"wqb OR within filter", Filters{WQB: []string{"W", "B-Hum"}}, []string{coursetest.PHIL100}},
		{"wqb any code", Filters{WQB: []string{"Q", "B-Soc"}}, []string{coursetest.PSYC100, coursetest.MACM101}},
		{"campus", Filters{Campus: []string{"Vancouver"}}, []string{coursetest.PHIL100}},
		{"campus OR", Filters{Campus: []string{"Surrey", "Vancouver"}}, []string{coursetest.CMPT120, coursetest.PHIL100}},
		{"exclude department", Filters{ExcludeDepartments: []string{"CMPT"}}, []string{coursetest.PSYC100, coursetest.MACM101, coursetest.PHIL100}},
		{
			"campus AND exclude",
			Filters{Campus: []string{"Burnaby"}, ExcludeDepartments: []string{"CMPT", "PHIL"}},
			[]string{coursetest.PSYC100, coursetest.MACM101},
		},
		{
			"campus AND wqb",
			Filters{Campus: []string{"Surrey"}, WQB: []string{"W"}},
			nil,
		},
		{
			"exclude every department",
			Filters{ExcludeDepartments: []string{"CMPT", "PSYC", "MACM", "PHIL"}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := admitted(tt.filters)
			if len(got) != len(tt.want) {
				t.Fatalf("admitted = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("admitted[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilters_Kinds(t *testing.T) {
	if (Filters{}).HasListFilters() || (Filters{}).HasScalarFilters() {
		t.Error("empty filters report active")
	}
	if !(Filters{MaxLevel: intPtr(200)}).HasScalarFilters() {
		t.Error("max level should be scalar")
	}
	if !(Filters{NoPrerequisites: true}).HasScalarFilters() {
		t.Error("no prerequisites should be scalar")
	}
	if (Filters{MaxLevel: intPtr(200)}).HasListFilters() {
		t.Error("max level is not a list filter")
	}
	if !(Filters{ExcludeDepartments: []string{"CMPT"}}).HasListFilters() {
		t.Error("exclude departments should be a list filter")
	}
}

func TestFilters_Native(t *testing.T) {
	expr, err := Filters{MaxLevel: intPtr(200), NoPrerequisites: true, Campus: []string{"Burnaby"}}.Native()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conds := expr.Conditions()
	if len(conds) != 2 {
		t.Fatalf("conditions = %d, want 2 (list filters are not native)", len(conds))
	}
	if conds[0].Key() != course.FieldLevel || conds[0].Op() != filter.OpLte || conds[0].Number() != 200 {
		t.Errorf("conds[0] = %s", conds[0])
	}
	if conds[1].Key() != course.FieldHasPrerequisites || conds[1].Value() != "false" {
		t.Errorf("conds[1] = %s", conds[1])
	}

	empty, err := Filters{Campus: []string{"Burnaby"}}.Native()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Errorf("expected empty native filter, got %s", empty)
	}
}
