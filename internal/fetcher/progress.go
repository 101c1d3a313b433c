package fetcher

import (
	"math"
	"regexp"
	"strconv"
)

// ProgressKind tags which shape a raw progress report arrived in.
type ProgressKind int

const (
	ProgressUnknown ProgressKind = iota
	ProgressPercentText
	ProgressPercentValue
	ProgressByteCounts
)

// ProgressEvent is one raw progress report from the fetch tool.
type ProgressEvent struct {
	Text       string
	Percent    float64
	Downloaded int64
	Total      int64
	Kind       ProgressKind
}

func PercentText(s string) ProgressEvent {
	return ProgressEvent{Kind: ProgressPercentText, Text: s}
}

func PercentValue(p float64) ProgressEvent {
	return ProgressEvent{Kind: ProgressPercentValue, Percent: p}
}

func ByteCounts(downloaded, total int64) ProgressEvent {
	return ProgressEvent{Kind: ProgressByteCounts, Downloaded: downloaded, Total: total}
}

var percentPattern = regexp.MustCompile(`(-?\d+\.?\d*)%`)

// Normalize converts ev into an integer percentage clamped to [0,100].
// The boolean is false when ev carries nothing usable.
func Normalize(ev ProgressEvent) (int, bool) {
	var pct float64
	switch ev.Kind {
	case ProgressPercentText:
		m := percentPattern.FindStringSubmatch(ev.Text)
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		pct = v
	case ProgressPercentValue:
		pct = ev.Percent
	case ProgressByteCounts:
		if ev.Total <= 0 {
			return 0, false
		}
		pct = float64(ev.Downloaded) / float64(ev.Total) * 100
	default:
		return 0, false
	}

	if math.IsNaN(pct) {
		return 0, false
	}
	// bound first: huge values overflow int
	pct = math.Max(0, math.Min(100, pct))
	return int(math.Floor(pct)), true
}

// Clamp bounds p to [0,100].
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
