package gridparse

import (
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// synthesizeBreaks inserts Recess and Lunch when the parsed text carried
// neither, at a position matching the usual bell order. Every day receives
// a single default entry for the synthesized period, never an empty list.
func (p *Parser) synthesizeBreaks(sched *model.Schedule) {
	if !sched.HasPeriodContaining("recess") {
		recess := model.Period{Name: p.cfg.RecessName, StartTime: p.cfg.RecessStart, EndTime: p.cfg.RecessEnd}
		insertPeriod(sched, recess, []string{"Tutorial", "Period 2"}, "Period 3")
		populateBreak(sched, recess)
		periodsSynthesized.WithLabelValues("recess").Inc()
		p.log.Debugf("synthesized %s %s-%s", recess.Name, recess.StartTime, recess.EndTime)
	}
	if !sched.HasPeriodContaining("lunch") {
		lunch := model.Period{Name: p.cfg.LunchName, StartTime: p.cfg.LunchStart, EndTime: p.cfg.LunchEnd}
		insertPeriod(sched, lunch, []string{"Period 4", "Period 3"}, "Period 5")
		populateBreak(sched, lunch)
		periodsSynthesized.WithLabelValues("lunch").Inc()
		p.log.Debugf("synthesized %s %s-%s", lunch.Name, lunch.StartTime, lunch.EndTime)
	}
}

// insertPeriod places the period immediately after the first matching
// anchor, else immediately before the before-anchor, else at the end.
func insertPeriod(sched *model.Schedule, period model.Period, afterAnchors []string, beforeAnchor string) {
	pos := len(sched.Periods)
	found := false
	for _, anchor := range afterAnchors {
		if i := periodIndexFold(sched, anchor); i >= 0 {
			pos = i + 1
			found = true
			break
		}
	}
	if !found {
		if i := periodIndexFold(sched, beforeAnchor); i >= 0 {
			pos = i
		}
	}
	sched.Periods = append(sched.Periods, model.Period{})
	copy(sched.Periods[pos+1:], sched.Periods[pos:])
	sched.Periods[pos] = period
}

// populateBreak fills every day with one default entry for the period.
func populateBreak(sched *model.Schedule, period model.Period) {
	for _, d := range sched.Days {
		if sched.Classes[d] == nil {
			sched.Classes[d] = make(map[string][]model.ClassEntry)
		}
		sched.Classes[d][period.Name] = []model.ClassEntry{{
			Subject:   period.Name,
			StartTime: period.StartTime,
			EndTime:   period.EndTime,
		}}
	}
}

func periodIndexFold(sched *model.Schedule, name string) int {
	for i, p := range sched.Periods {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}
