package orchestrate

import (
	"regexp"
	"strings"
)

// systemPrompt instructs the endpoint to emit nothing but schedule JSON.
// The synthesis rules mirror the deterministic grid parser so both import
// modes land on the same canonical shape.
const systemPrompt = `You convert pasted school timetable text into JSON. Respond with JSON only, no markdown, no commentary.

The JSON object has exactly this shape:
{"days":["Day 1","Day 2"],"periods":[{"name":"Period 1","startTime":"8:35am","endTime":"9:35am"}],"classes":{"Day 1":{"Period 1":[{"subject":"","code":"","room":"","teacher":"","startTime":"","endTime":""}]}}}

Rules:
- "days" lists the day columns in the order they appear.
- "periods" lists every period once, in bell order, shared by all days. Valid period names are "Period N" and "Tutorial".
- Every day must appear under "classes" and every period name must appear under every day, with an empty array when that day has no class in that period.
- Each class entry must carry all six fields; use empty strings for unknown code, room or teacher, never omit a key.
- If the text has no period containing "Recess", add {"name":"Recess","startTime":"10:55am","endTime":"11:25am"} after Tutorial, else after Period 2, else before Period 3, else last, and give every day one Recess entry.
- If the text has no period containing "Lunch", add {"name":"Lunch","startTime":"1:30pm","endTime":"2:25pm"} after Period 4, else after Period 3, else before Period 5, else last, and give every day one Lunch entry.
- Times use the form "8:35am".`

// buildUserPrompt wraps the pasted text.
func buildUserPrompt(text string) string {
	return "Convert this timetable:\n\n" + text
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}
