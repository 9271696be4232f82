package orchestrate

import (
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// placeholderSubjects are tokens generators emit when they have nothing.
// Recess and Lunch count too: the prompt tells the generator to synthesize
// them, so their presence alone proves nothing about the input.
var placeholderSubjects = map[string]bool{
	"unknown": true,
	"n/a":     true,
	"tbd":     true,
	"none":    true,
	"recess":  true,
	"lunch":   true,
}

// hasRealContent rejects well-formed but content-free output: at least one
// class entry must carry a subject that is neither empty nor a placeholder.
func hasRealContent(s *model.Schedule) bool {
	for _, dayClasses := range s.Classes {
		for _, entries := range dayClasses {
			for _, e := range entries {
				subject := strings.ToLower(strings.TrimSpace(e.Subject))
				if subject != "" && !placeholderSubjects[subject] {
					return true
				}
			}
		}
	}
	return false
}
