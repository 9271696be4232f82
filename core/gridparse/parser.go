// Package gridparse implements the deterministic, line-positional parser
// for human-pasted tabular timetable text. The line cursor moves through an
// explicit state machine: await a period header, read its time range, then
// consume one three-line block per day column.
package gridparse

import (
	"regexp"
	"strings"

	"github.com/kilianp07/timetable/core/logger"
	"github.com/kilianp07/timetable/core/model"
)

var (
	periodHeaderRe = regexp.MustCompile(`(?i)^(period\s+\d+|tutorial)$`)
	timeRangeRe    = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2}[ap]m)\s*[–-]\s*(\d{1,2}:\d{2}[ap]m)$`)
	timeOfDayRe    = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}[ap]m$`)
	codeLineRe     = regexp.MustCompile(`^\((.*)\)$`)
	roomRe         = regexp.MustCompile(`^([A-Z]\s+\d+)`)
	teacherRe      = regexp.MustCompile(`(Mr|Mrs|Ms|Miss|Dr|Prof)\s+[A-Za-z\s.]+`)
)

// Parser converts pasted grid text into a Schedule. All-or-nothing: a
// structural failure returns a typed ParseFailure and no partial schedule.
type Parser struct {
	cfg Config
	log logger.Logger
}

// New creates a Parser. A nil-safe logger is not substituted; pass
// logger.NopLogger{} in tests.
func New(cfg Config, log logger.Logger) *Parser {
	cfg.SetDefaults()
	return &Parser{cfg: cfg, log: log}
}

type state int

const (
	awaitPeriodHeader state = iota
	awaitTimeRange
	consumeDayBlock
)

// Parse runs the full grid parse including Recess/Lunch synthesis.
func (p *Parser) Parse(text string) (*model.Schedule, error) {
	lines, nonEmpty := splitLines(text)
	if nonEmpty < 3 {
		gridParses.WithLabelValues("not_enough_data").Inc()
		return nil, &model.ParseFailure{Kind: model.FailureNotEnoughData, Message: "need at least a day header, a period header and one class line"}
	}

	headerIdx := firstNonEmpty(lines)
	days := splitDays(lines[headerIdx])
	if len(days) < 2 {
		gridParses.WithLabelValues("no_day_columns").Inc()
		return nil, &model.ParseFailure{Kind: model.FailureNoDayColumns, Message: "day header row must contain at least two tab-separated columns"}
	}

	if countPeriodHeaders(lines[headerIdx+1:]) == 0 {
		gridParses.WithLabelValues("no_periods_found").Inc()
		return nil, &model.ParseFailure{Kind: model.FailureNoPeriodsFound, Message: "no period headers found"}
	}

	sched := model.NewSchedule(days, nil)
	p.walk(lines[headerIdx+1:], sched)
	p.synthesizeBreaks(sched)
	sched.EnsureKeys()

	gridParses.WithLabelValues("ok").Inc()
	p.log.Infof("parsed grid: %d days, %d periods", len(sched.Days), len(sched.Periods))
	return sched, nil
}

// walk drives the cursor over the body lines. Periods that run out of input
// mid-way keep the day entries collected so far; the parse does not abort.
func (p *Parser) walk(lines []string, sched *model.Schedule) {
	st := awaitPeriodHeader
	var current model.Period
	dayIdx := 0
	i := 0

	for i < len(lines) {
		line := lines[i]
		switch st {
		case awaitPeriodHeader:
			if !periodHeaderRe.MatchString(line) {
				i++
				continue
			}
			current = model.Period{Name: line}
			st = awaitTimeRange
			i++

		case awaitTimeRange:
			if m := timeRangeRe.FindStringSubmatch(line); m != nil {
				current.StartTime, current.EndTime = m[1], m[2]
				i++
			} else if isPeriodThree(current.Name) && i+1 < len(lines) {
				// Some exports insert a stray line between the Period 3
				// header and its bell times. Look one line further ahead
				// before giving up; keep this narrow.
				if m := timeRangeRe.FindStringSubmatch(lines[i+1]); m != nil {
					current.StartTime, current.EndTime = m[1], m[2]
					i += 2
				} else {
					current.StartTime, current.EndTime = p.cfg.FallbackStart, p.cfg.FallbackEnd
				}
			} else {
				current.StartTime, current.EndTime = p.cfg.FallbackStart, p.cfg.FallbackEnd
			}
			sched.Periods = append(sched.Periods, current)
			for _, d := range sched.Days {
				sched.Classes[d][current.Name] = []model.ClassEntry{}
			}
			dayIdx = 0
			st = consumeDayBlock

		case consumeDayBlock:
			if dayIdx >= len(sched.Days) {
				st = awaitPeriodHeader
				continue
			}
			if p.isNewPeriodHeader(current.Name, line) {
				st = awaitPeriodHeader
				continue
			}
			if i+2 >= len(lines) {
				// Insufficient lines for a full day block: stop this period
				// early, keeping the days already collected.
				p.log.Debugf("period %s: input ended after %d of %d days", current.Name, dayIdx, len(sched.Days))
				return
			}
			day := sched.Days[dayIdx]
			if entry, ok := p.dayBlockEntry(lines[i], lines[i+1], lines[i+2], current); ok {
				sched.Classes[day][current.Name] = append(sched.Classes[day][current.Name], entry)
			}
			i += 3
			dayIdx++
			if dayIdx == len(sched.Days) {
				st = awaitPeriodHeader
			}
		}
	}
}

// isNewPeriodHeader reports whether line starts a new period block. A
// literal "Tutorial" subject line inside the Tutorial period is a subject,
// not a header; without this rule the cursor would loop forever.
func (p *Parser) isNewPeriodHeader(currentPeriod, line string) bool {
	if !periodHeaderRe.MatchString(line) {
		return false
	}
	if strings.EqualFold(currentPeriod, "tutorial") && strings.EqualFold(line, "tutorial") {
		return false
	}
	return true
}

// dayBlockEntry builds a ClassEntry from the three lines of one day cell.
// An empty subject consumes the block and yields no entry.
func (p *Parser) dayBlockEntry(subjectLine, codeLine, roomTeacherLine string, period model.Period) (model.ClassEntry, bool) {
	subject := strings.TrimSpace(subjectLine)
	if subject == "" {
		return model.ClassEntry{}, false
	}
	entry := model.ClassEntry{
		Subject:   subject,
		StartTime: period.StartTime,
		EndTime:   period.EndTime,
	}
	if m := codeLineRe.FindStringSubmatch(strings.TrimSpace(codeLine)); m != nil {
		entry.Code = strings.TrimSpace(m[1])
	} else {
		entry.Code = strings.TrimSpace(codeLine)
	}
	entry.Room, entry.Teacher = splitRoomTeacher(roomTeacherLine)
	return entry, true
}

// splitRoomTeacher splits "M 07 Mr Paul Jefimenko" into room and teacher.
func splitRoomTeacher(line string) (room, teacher string) {
	line = strings.TrimSpace(line)
	if m := roomRe.FindString(line); m != "" {
		room = m
		line = strings.TrimSpace(line[len(m):])
	}
	if m := teacherRe.FindString(line); m != "" {
		return room, strings.TrimSpace(m)
	}
	return room, line
}

func isPeriodThree(name string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(name), " "), "period 3")
}

// splitLines trims every line, keeps empties for positional consumption,
// and reports how many lines carry text.
func splitLines(text string) ([]string, int) {
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, len(rawLines))
	nonEmpty := 0
	for i, l := range rawLines {
		lines[i] = strings.TrimSpace(l)
		if lines[i] != "" {
			nonEmpty++
		}
	}
	return lines, nonEmpty
}

func firstNonEmpty(lines []string) int {
	for i, l := range lines {
		if l != "" {
			return i
		}
	}
	return 0
}

func splitDays(header string) []string {
	var days []string
	for _, tok := range strings.Split(header, "\t") {
		if t := strings.TrimSpace(tok); t != "" {
			days = append(days, t)
		}
	}
	return days
}

func countPeriodHeaders(lines []string) int {
	n := 0
	for _, l := range lines {
		if periodHeaderRe.MatchString(l) {
			n++
		}
	}
	return n
}
