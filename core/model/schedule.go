package model

import "strings"

// Schedule is the canonical structured timetable: an ordered list of day
// columns, an ordered list of named periods shared by every day, and the
// class entries scheduled per day per period.
type Schedule struct {
	Days    []string                            `json:"days"`
	Periods []Period                            `json:"periods"`
	Classes map[string]map[string][]ClassEntry `json:"classes"`
}

// Period is a named time slot. Times use the "h:mma" form ("8:35am").
type Period struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ClassEntry is one scheduled class occurrence. Code, Room and Teacher may
// be empty strings but are always present in the serialized form.
type ClassEntry struct {
	Subject   string `json:"subject"`
	Code      string `json:"code"`
	Room      string `json:"room"`
	Teacher   string `json:"teacher"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// NewSchedule builds a schedule with every day/period combination keyed to
// an empty entry list, satisfying the structural invariant up front.
func NewSchedule(days []string, periods []Period) *Schedule {
	s := &Schedule{
		Days:    append([]string(nil), days...),
		Periods: append([]Period(nil), periods...),
		Classes: make(map[string]map[string][]ClassEntry, len(days)),
	}
	for _, d := range days {
		s.Classes[d] = make(map[string][]ClassEntry, len(periods))
		for _, p := range periods {
			s.Classes[d][p.Name] = []ClassEntry{}
		}
	}
	return s
}

// EnsureKeys backfills missing day or period keys so that every day listed
// in Days carries every period listed in Periods, possibly empty.
func (s *Schedule) EnsureKeys() {
	if s.Classes == nil {
		s.Classes = make(map[string]map[string][]ClassEntry, len(s.Days))
	}
	for _, d := range s.Days {
		if s.Classes[d] == nil {
			s.Classes[d] = make(map[string][]ClassEntry, len(s.Periods))
		}
		for _, p := range s.Periods {
			if s.Classes[d][p.Name] == nil {
				s.Classes[d][p.Name] = []ClassEntry{}
			}
		}
	}
}

// Validate checks the structural invariant: every day has a class map and
// every period is keyed under every day.
func (s *Schedule) Validate() error {
	for _, d := range s.Days {
		dayClasses, ok := s.Classes[d]
		if !ok {
			return &ParseFailure{Kind: FailureInvalidSchedule, Message: "day " + d + " missing from classes"}
		}
		for _, p := range s.Periods {
			if _, ok := dayClasses[p.Name]; !ok {
				return &ParseFailure{Kind: FailureInvalidSchedule, Message: "period " + p.Name + " missing under day " + d}
			}
		}
	}
	return nil
}

// HasPeriodContaining reports whether any period name contains the given
// substring, case-insensitively.
func (s *Schedule) HasPeriodContaining(substr string) bool {
	substr = strings.ToLower(substr)
	for _, p := range s.Periods {
		if strings.Contains(strings.ToLower(p.Name), substr) {
			return true
		}
	}
	return false
}

// PeriodIndex returns the index of the period with the given name, or -1.
func (s *Schedule) PeriodIndex(name string) int {
	for i, p := range s.Periods {
		if p.Name == name {
			return i
		}
	}
	return -1
}
