// Package prune trims message records out of a chat transcript while keeping
// the session header and every non-message record in place.
package prune

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Kind classifies a transcript line.
type Kind int

const (
	KindOther Kind = iota // tool records, diagnostics, unparseable text
	KindUser
	KindAssistant
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindSystem:
		return "system"
	default:
		return "other"
	}
}

// messageKinds maps the `type` values that count toward retention.
var messageKinds = map[string]Kind{
	"user":      KindUser,
	"assistant": KindAssistant,
	"system":    KindSystem,
}

const cacheReadField = "cache_read_input_tokens"

// Result is the outcome of a Prune call.
type Result struct {
	Lines             []string
	Kept              int
	Dropped           int
	AssistantMessages int
}

// ParseLine parses line as a JSON object. ok is false for anything else.
func ParseLine(line string) (gjson.Result, bool) {
	if !gjson.Valid(line) {
		return gjson.Result{}, false
	}
	v := gjson.Parse(line)
	if !v.IsObject() {
		return gjson.Result{}, false
	}
	return v, true
}

// Classify reports the message kind of line. When `type` is repeated, the
// last occurrence wins.
func Classify(line string) Kind {
	v, ok := ParseLine(line)
	if !ok {
		return KindOther
	}
	t := lastKey(v, "type")
	if t.Type != gjson.String {
		return KindOther
	}
	return messageKinds[t.Str]
}

// lastKey returns the value of the last member of obj named key.
func lastKey(obj gjson.Result, key string) gjson.Result {
	var last gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			last = v
		}
		return true
	})
	return last
}

// Prune keeps the last keep assistant messages, plus every message that
// follows the first of them. Line 0 and non-message lines are always kept.
// A negative keep behaves like 0.
func Prune(lines []string, keep int) Result {
	if len(lines) == 0 {
		return Result{Lines: []string{}}
	}

	var assistantIdx []int
	isMessage := make([]bool, len(lines))
	for i := 1; i < len(lines); i++ {
		kind := Classify(lines[i])
		if kind == KindOther {
			continue
		}
		isMessage[i] = true
		if kind == KindAssistant {
			assistantIdx = append(assistantIdx, i)
		}
	}

	if keep < 0 {
		keep = 0
	}
	cutoff := Cutoff(assistantIdx, keep, len(lines))

	processed := resetLastCacheRead(lines)

	res := Result{
		Lines:             make([]string, 0, len(lines)),
		AssistantMessages: len(assistantIdx),
	}
	res.Lines = append(res.Lines, processed[0])
	for i := 1; i < len(processed); i++ {
		if !isMessage[i] {
			res.Lines = append(res.Lines, processed[i])
			continue
		}
		if i >= cutoff {
			res.Lines = append(res.Lines, processed[i])
			res.Kept++
		} else {
			res.Dropped++
		}
	}
	return res
}

// Cutoff returns the line index before which message lines are dropped.
// When keep is 0 and there is at least one assistant message, the boundary
// lies past the end of the transcript, so every message line is dropped.
func Cutoff(assistantIdx []int, keep, lineCount int) int {
	if len(assistantIdx) <= keep {
		return 0
	}
	pos := len(assistantIdx) - keep
	if pos >= len(assistantIdx) {
		return lineCount
	}
	return assistantIdx[pos]
}

// resetLastCacheRead returns a copy of lines where the last line carrying a
// positive cache read counter has that counter set to 0.
func resetLastCacheRead(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)

	for i := len(lines) - 1; i >= 0; i-- {
		path, ok := cacheReadPath(lines[i])
		if !ok {
			continue
		}
		rewritten, err := sjson.Set(lines[i], path, 0)
		if err != nil {
			// Same text parsed a moment ago; keep it untouched if it doesn't now.
			return out
		}
		out[i] = rewritten
		return out
	}
	return out
}

// cacheReadPath returns the JSON path of a positive cache read counter in line.
// Any truthy top-level usage value shadows message.usage, even one that is
// not an object.
func cacheReadPath(line string) (string, bool) {
	v, ok := ParseLine(line)
	if !ok {
		return "", false
	}
	usagePath := "usage"
	usage := v.Get(usagePath)
	if !truthy(usage) {
		usagePath = "message.usage"
		usage = v.Get(usagePath)
	}
	if !usage.IsObject() {
		return "", false
	}
	n := usage.Get(cacheReadField)
	if n.Type != gjson.Number || n.Num <= 0 {
		return "", false
	}
	return usagePath + "." + cacheReadField, true
}

// truthy reports whether r is present and not null, false, 0 or "".
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}
