package course

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxPrereqInDocument bounds the prerequisite text embedded in the document; the full text lives in metadata.
const maxPrereqInDocument = 200

const interestsPrefix = "Good for students interested in: "

// FormatDocument renders the structured embedding text for a course:
//
//	<CODE> - <Title>
//	Department: <dept> | Level: <level> | Units: <units>
//	Campus: <c1, c2> | Delivery: <d1, d2>
//	WQB: <w1, w2 | None> | Prerequisites: <text | None | Required>
//
//	<description>
//
//	Good for students interested in: <k1, k2>
//
// The availability line only appears when campuses or delivery methods are known,
// and the interests line only when keywords exist.
func FormatDocument(c Course) string {
	lines := make([]string, 0, 8)
	lines = append(lines,
		c.Code+" - "+c.Title,
		"Department: "+c.Department+" | Level: "+strconv.Itoa(c.Level)+" | Units: "+strconv.Itoa(c.Units),
	)

	var avail []string
	if len(c.Campuses) > 0 {
		avail = append(avail, "Campus: "+strings.Join(c.Campuses, ", "))
	}
	if len(c.DeliveryMethods) > 0 {
		avail = append(avail, "Delivery: "+strings.Join(c.DeliveryMethods, ", "))
	}
	if len(avail) > 0 {
		lines = append(lines, strings.Join(avail, " | "))
	}

	wqb := "None"
	if len(c.WQB) > 0 {
		wqb = strings.Join(c.WQB, ", ")
	}
	lines = append(lines, "WQB: "+wqb+" | Prerequisites: "+prerequisiteText(c))

	lines = append(lines, "", c.Description)

	if len(c.Keywords) > 0 {
		lines = append(lines, "", interestsPrefix+strings.Join(c.Keywords, ", "))
	}

	return strings.Join(lines, "\n")
}

func prerequisiteText(c Course) string {
	switch {
	case !c.HasPrerequisites:
		return "None"
	case c.PrerequisitesRaw == "":
		return "Required"
	case utf8.RuneCountInString(c.PrerequisitesRaw) > maxPrereqInDocument:
		return firstRunes(c.PrerequisitesRaw, maxPrereqInDocument) + "..."
	default:
		return c.PrerequisitesRaw
	}
}

// firstRunes cuts s after n characters without splitting a multi-byte rune.
func firstRunes(s string, n int) string {
	i := 0
	for off := range s {
		if i == n {
			return s[:off]
		}
		i++
	}
	return s
}

// DescriptionFromDocument recovers the human-readable description: the segment
// after the first blank line. Returns "" when the document has no blank line.
func DescriptionFromDocument(document string) string {
	parts := strings.Split(document, "\n\n")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

var termSuffixes = map[byte]string{
	'1': "sp",
	'4': "su",
	'7': "fa",
}

// DocumentID builds the stable upsert key for a course offering,
// e.g. ("CMPT 120", "1264") -> "cmpt-120-2026su".
//
// Semester codes are CYYT: century digit (1 = 2000s), two-digit year, term digit.
func DocumentID(code, semester string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), " ", "-")
	return slug + "-" + semesterYear(semester) + semesterSuffix(semester)
}

func semesterYear(semester string) string {
	if len(semester) == 4 {
		if n, err := strconv.Atoi(semester[:3]); err == nil {
			return strconv.Itoa(1900 + n)
		}
	}
	return "2026"
}

func semesterSuffix(semester string) string {
	if semester == "" {
		return ""
	}
	last := semester[len(semester)-1]
	if s, ok := termSuffixes[last]; ok {
		return s
	}
	return string(last)
}
