package jsonrepair

import (
	"testing"
)

const truncatedMidString = `{"days":["Day 1"],"periods":[{"name":"Period 1","startTime":"8:35am","endTime":"9:35am"}],"classes":{"Day 1":{"Period 1":[{"subject":"Math","code":"`

func TestRepairVerbatim(t *testing.T) {
	obj, strategy, ok := Repair(`{"days":["Day 1"],"periods":[],"classes":{}}`, 0)
	if !ok || strategy != StrategyVerbatim {
		t.Fatalf("expected verbatim success, got ok=%v strategy=%s", ok, strategy)
	}
	if len(obj["days"].([]any)) != 1 {
		t.Fatalf("unexpected days %v", obj["days"])
	}
}

func TestRepairTruncatedMidString(t *testing.T) {
	s, _, ok := RepairSchedule(truncatedMidString, 0)
	if !ok {
		t.Fatalf("repair must not fail on truncated input")
	}
	if len(s.Days) != 1 || s.Days[0] != "Day 1" {
		t.Fatalf("days must survive truncation, got %v", s.Days)
	}
	if len(s.Periods) != 1 || s.Periods[0].Name != "Period 1" || s.Periods[0].StartTime != "8:35am" {
		t.Fatalf("periods must survive truncation, got %v", s.Periods)
	}
}

func TestRepairBalancesBracesAndQuotes(t *testing.T) {
	obj, strategy, ok := Repair(`{"a":[1,2,{"b":"c`, 0)
	if !ok {
		t.Fatalf("expected balanced repair")
	}
	if strategy != StrategyBalance {
		t.Fatalf("expected balance strategy got %s", strategy)
	}
	arr := obj["a"].([]any)
	if len(arr) != 3 {
		t.Fatalf("unexpected array %v", arr)
	}
}

func TestRepairDayBlockExtraction(t *testing.T) {
	raw := `{"days":["Day 1","Day 2"],"periods":[{"name":"Period 1","startTime":"8:35am","endTime":"9:35am"}],` +
		`"classes":{"Day 1":{"Period 1":[{"subject":"Math","code":"","room":"","teacher":""}]},` +
		`"Day 2":{"Period 1":[{"subject":"English","code":` // cut mid-value, unbalanced
	s, strategy, ok := RepairSchedule(raw, 0)
	if !ok {
		t.Fatalf("expected day block salvage")
	}
	if strategy != StrategyDayBlocks {
		t.Fatalf("expected day_blocks strategy got %s", strategy)
	}
	if got := s.Classes["Day 1"]["Period 1"]; len(got) != 1 || got[0].Subject != "Math" {
		t.Fatalf("complete day block must survive, got %v", got)
	}
	// Day 2 was truncated: it is backfilled with empty period lists only.
	if got := s.Classes["Day 2"]["Period 1"]; len(got) != 0 {
		t.Fatalf("truncated day must not leak entries, got %v", got)
	}
}

func TestRepairPartialDaySalvage(t *testing.T) {
	raw := `{"days":["Day 1"],"periods":[{"name":"Period 1","startTime":"8:35am","endTime":"9:35am"}],` +
		`"classes":{"Day 1":{"Period 1":[{"subject":"Math","code":"","room":"","teacher":""}],` +
		`"Period 2":` // Period 1 array complete, Period 2 cut before its value
	s, strategy, ok := RepairSchedule(raw, 0)
	if !ok {
		t.Fatalf("expected partial day salvage")
	}
	if strategy != StrategyPartialDay {
		t.Fatalf("expected partial_day strategy got %s", strategy)
	}
	if got := s.Classes["Day 1"]["Period 1"]; len(got) != 1 || got[0].Subject != "Math" {
		t.Fatalf("complete period array must survive, got %v", got)
	}
}

func TestRepairSkeletonFallback(t *testing.T) {
	raw := `{"days":["Day 1"],"periods":[],"classes":{"Day 1`
	s, strategy, ok := RepairSchedule(raw, 0)
	if !ok {
		t.Fatalf("skeleton fallback must succeed")
	}
	if strategy != StrategySkeleton && strategy != StrategyBalance {
		t.Fatalf("unexpected strategy %s", strategy)
	}
	if len(s.Days) != 1 {
		t.Fatalf("days must be recovered, got %v", s.Days)
	}
}

func TestRepairGarbageReturnsFalse(t *testing.T) {
	if _, _, ok := Repair("not json at all", 0); ok {
		t.Fatalf("pure garbage must not repair")
	}
}

func TestRepairEmptyInput(t *testing.T) {
	if _, _, ok := Repair("", 0); ok {
		t.Fatalf("empty input must not repair")
	}
	if _, _, ok := Repair("   ", 120); ok {
		t.Fatalf("blank input must not repair")
	}
}

func TestRepairRespectsErrOffset(t *testing.T) {
	raw := `{"days":["Day 1"],"periods":[],"classes":{"Day 1":{"Period 1":[]},"Day 2":{"Period 1":[]}}`
	// Unbalanced root (missing final brace): balance fixes it regardless of
	// the reported offset.
	if _, _, ok := Repair(raw, len(raw)); !ok {
		t.Fatalf("expected repair to succeed")
	}
}
