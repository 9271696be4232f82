// Package jsonrepair reconstructs valid structured data from malformed or
// truncated generator output. Every strategy re-validates its candidate
// with an actual parse before it is accepted; nothing is repaired in place.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// Strategy names the repair step that produced an accepted object. Used
// for logging and metrics only.
type Strategy string

const (
	StrategyVerbatim   Strategy = "verbatim"
	StrategyBalance    Strategy = "balance"
	StrategyDayBlocks  Strategy = "day_blocks"
	StrategyPartialDay Strategy = "partial_day"
	StrategySkeleton   Strategy = "skeleton"
)

var (
	// days and periods are flat arrays: objects inside them carry braces
	// but never brackets, so a complete array contains no ']' before its
	// own closer.
	daysArrayRe    = regexp.MustCompile(`"days"\s*:\s*(\[[^\]]*\])`)
	periodsArrayRe = regexp.MustCompile(`"periods"\s*:\s*(\[[^\]]*\])`)
	classesKeyRe   = regexp.MustCompile(`"classes"\s*:\s*\{`)
	blockStartRe   = regexp.MustCompile(`"([^"]+)"\s*:\s*\{`)
	periodArrayRe  = regexp.MustCompile(`"([^"]+)"\s*:\s*(\[[^\]]*\])`)
)

// Repair attempts to recover a valid JSON object from raw. errOffset is the
// byte offset reported by a failed parse, or 0 when unknown. It returns the
// parsed object, the strategy that succeeded, and false when every strategy
// failed. It never panics.
func Repair(raw string, errOffset int) (map[string]any, Strategy, bool) {
	text, strategy, ok := repairText(raw, errOffset)
	if !ok {
		return nil, "", false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, "", false
	}
	return obj, strategy, true
}

// RepairSchedule runs the same strategies and decodes the result into a
// Schedule with all day/period keys backfilled.
func RepairSchedule(raw string, errOffset int) (*model.Schedule, Strategy, bool) {
	text, strategy, ok := repairText(raw, errOffset)
	if !ok {
		return nil, "", false
	}
	var s model.Schedule
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, "", false
	}
	s.EnsureKeys()
	return &s, strategy, true
}

func repairText(raw string, errOffset int) (string, Strategy, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}
	if parseable(raw) {
		return raw, StrategyVerbatim, true
	}
	if text := balance(raw); text != "" && parseable(text) {
		return text, StrategyBalance, true
	}

	days := firstGroup(daysArrayRe, raw)
	periods := firstGroup(periodsArrayRe, raw)
	daysFound := days != "" && parseable(days)
	periodsFound := periods != "" && parseable(periods)
	if !daysFound {
		days = "[]"
	}
	if !periodsFound {
		periods = "[]"
	}
	if !daysFound && !periodsFound {
		// Nothing schedule-shaped was recovered: explicit failure beats an
		// empty skeleton fabricated from thin air.
		return "", "", false
	}

	complete, truncated := splitDayBlocks(raw, errOffset)
	if len(complete) > 0 {
		if text := assemble(days, periods, complete); parseable(text) {
			return text, StrategyDayBlocks, true
		}
	}
	if truncated != nil {
		if block, ok := salvagePartialDay(truncated.name, truncated.body); ok {
			if text := assemble(days, periods, []dayBlock{block}); parseable(text) {
				return text, StrategyPartialDay, true
			}
		}
	}

	// Empty but structurally valid, so the caller can report "no classes
	// recovered" instead of a hard failure.
	text := assemble(days, periods, nil)
	if parseable(text) {
		return text, StrategySkeleton, true
	}
	return "", "", false
}

func parseable(text string) bool {
	var v any
	return json.Unmarshal([]byte(text), &v) == nil
}

func firstGroup(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// balance truncates raw at the later of the last '}'/']' or, when a string
// literal is left unterminated, the last '"', then appends the closers the
// truncated prefix still owes.
func balance(raw string) string {
	idx := strings.LastIndexAny(raw, "}]")
	if q := strings.LastIndex(raw, `"`); q > idx {
		idx = q
	}
	if idx < 0 {
		return ""
	}
	s := raw[:idx+1]

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

type dayBlock struct {
	name string
	body string // brace-delimited object text, or raw tail when truncated
}

// splitDayBlocks finds every per-day object under "classes". Blocks whose
// braces balance — and, when a parse offset is known, that end before it —
// are complete; the first unbalanced block is returned as the truncated
// remainder.
func splitDayBlocks(raw string, errOffset int) (complete []dayBlock, truncated *dayBlock) {
	loc := classesKeyRe.FindStringIndex(raw)
	if loc == nil {
		return nil, nil
	}
	search := loc[1] // just past the '{' opening the classes object
	for {
		rel := blockStartRe.FindStringSubmatchIndex(raw[search:])
		if rel == nil {
			return complete, truncated
		}
		name := raw[search+rel[2] : search+rel[3]]
		open := search + rel[1] - 1 // the '{' of this day's object
		end, ok := matchBrace(raw, open)
		if !ok {
			if truncated == nil {
				truncated = &dayBlock{name: name, body: raw[open:]}
			}
			return complete, truncated
		}
		if errOffset <= 0 || end < errOffset {
			complete = append(complete, dayBlock{name: name, body: raw[open : end+1]})
		}
		search = end + 1
	}
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// salvagePartialDay keeps only the syntactically complete period arrays of
// a truncated day block and drops the rest of that day.
func salvagePartialDay(name, body string) (dayBlock, bool) {
	matches := periodArrayRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return dayBlock{}, false
	}
	var b strings.Builder
	b.WriteByte('{')
	wrote := 0
	for _, m := range matches {
		if !parseable(m[2]) {
			continue
		}
		if wrote > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"` + m[1] + `":` + m[2])
		wrote++
	}
	b.WriteByte('}')
	if wrote == 0 {
		return dayBlock{}, false
	}
	return dayBlock{name: name, body: b.String()}, true
}

func assemble(days, periods string, blocks []dayBlock) string {
	var b strings.Builder
	b.WriteString(`{"days":`)
	b.WriteString(days)
	b.WriteString(`,"periods":`)
	b.WriteString(periods)
	b.WriteString(`,"classes":{`)
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"` + blk.name + `":` + blk.body)
	}
	b.WriteString("}}")
	return b.String()
}
