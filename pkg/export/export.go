// Package export serializes parsed schedules for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/kilianp07/timetable/core/model"
)

// WriteJSON writes the schedule to w in indented JSON format.
func WriteJSON(w io.Writer, s *model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes the schedule to w as one row per class entry, walking
// days and periods in their declared order so output is deterministic.
func WriteCSV(w io.Writer, s *model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "period", "subject", "code", "room", "teacher", "start_time", "end_time"}); err != nil {
		return err
	}
	for _, day := range s.Days {
		for _, p := range s.Periods {
			for _, e := range s.Classes[day][p.Name] {
				rec := []string{day, p.Name, e.Subject, e.Code, e.Room, e.Teacher, e.StartTime, e.EndTime}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
