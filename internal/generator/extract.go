package generator

import "strings"

// ExtractJSONArray returns the substring of raw spanning the first '[' and
// the last ']'. Model output usually wraps the array in prose or markdown
// fences; slicing between the outermost brackets strips that. This is a
// cheap heuristic, not a JSON scanner: a stray ']' in trailing prose would
// extend the slice and the parser would reject it. When no plausible span
// exists the input comes back unchanged so the parser fails with a real
// message instead of this layer guessing.
func ExtractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
