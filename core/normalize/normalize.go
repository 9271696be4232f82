// Package normalize converts heterogeneous flat-string class descriptions
// into canonical ClassEntry records.
package normalize

import (
	"regexp"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

var (
	codeRe    = regexp.MustCompile(`\(([^)]*)\)`)
	roomRe    = regexp.MustCompile(`^([A-Z]+\s+\d+)`)
	teacherRe = regexp.MustCompile(`(Mr|Mrs|Ms|Miss|Dr|Prof)\s+[A-Za-z\s.]+`)
)

// Normalize parses a flat class description such as
// "Specialist Mathematics (10SPE251101) M 07 Mr Paul Jefimenko" into a
// ClassEntry. Missing fields are empty strings, never absent.
func Normalize(raw string) model.ClassEntry {
	raw = strings.Join(strings.Fields(raw), " ")
	entry := model.ClassEntry{}

	loc := codeRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		// No parenthesized code: best-effort split into subject and teacher.
		entry.Subject, entry.Teacher = splitHalf(raw)
		return entry
	}

	entry.Subject = strings.TrimSpace(raw[:loc[0]])
	entry.Code = strings.TrimSpace(raw[loc[2]:loc[3]])

	rest := strings.TrimSpace(raw[loc[1]:])
	if m := roomRe.FindString(rest); m != "" {
		entry.Room = strings.TrimSpace(m)
		rest = strings.TrimSpace(rest[len(m):])
	}
	if m := teacherRe.FindString(rest); m != "" {
		entry.Teacher = strings.TrimSpace(m)
	} else {
		entry.Teacher = rest
	}
	return entry
}

// NormalizeEntry passes already-structured entries through and fills any
// entry that only carries a flat description in its subject field.
func NormalizeEntry(e model.ClassEntry) model.ClassEntry {
	if e.Code != "" || e.Room != "" || e.Teacher != "" {
		return e
	}
	if !strings.Contains(e.Subject, "(") {
		return e
	}
	out := Normalize(e.Subject)
	out.StartTime = e.StartTime
	out.EndTime = e.EndTime
	return out
}

// splitHalf guesses a subject/teacher boundary at the midpoint of the
// whitespace-separated words.
func splitHalf(raw string) (subject, teacher string) {
	words := strings.Fields(raw)
	if len(words) < 2 {
		return strings.TrimSpace(raw), ""
	}
	mid := len(words) / 2
	return strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")
}
