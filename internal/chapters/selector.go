package chapters

import (
	"strconv"
	"strings"
)

// Selection is a command-line chapter pick. At most one field is honoured,
// in field order; the zero Selection keeps everything.
type Selection struct {
	// Chapter is a label such as "28.5", or a 1-based position when no
	// label matches.
	Chapter string
	// Range is "from-to", positions inclusive.
	Range string
	// List is a comma separated list of positions.
	List string
}

// Apply returns the chapters of all picked by s, in page order. An
// unmatched pick gives an empty result, never the full list.
func (s Selection) Apply(all []Chapter) []Chapter {
	switch {
	case strings.TrimSpace(s.Chapter) != "":
		return pickOne(all, strings.TrimSpace(s.Chapter))
	case strings.TrimSpace(s.Range) != "":
		return pickRange(all, s.Range)
	case strings.TrimSpace(s.List) != "":
		return pickList(all, s.List)
	default:
		return all
	}
}

func pickOne(all []Chapter, want string) []Chapter {
	var byLabel []Chapter
	for _, ch := range all {
		if ch.Label == want {
			byLabel = append(byLabel, ch)
		}
	}
	if len(byLabel) > 0 {
		return byLabel
	}

	if pos, ok := position(want, len(all)); ok {
		return []Chapter{all[pos]}
	}

	return []Chapter{}
}

func pickRange(all []Chapter, rng string) []Chapter {
	from, to, found := strings.Cut(rng, "-")
	if !found {
		return []Chapter{}
	}

	start, ok1 := position(from, len(all))
	end, ok2 := position(to, len(all))
	if !ok1 || !ok2 || start > end {
		return []Chapter{}
	}

	return all[start : end+1]
}

func pickList(all []Chapter, list string) []Chapter {
	out := []Chapter{}
	for item := range strings.SplitSeq(list, ",") {
		if pos, ok := position(item, len(all)); ok {
			out = append(out, all[pos])
		}
	}

	return out
}

// position turns a 1-based position into an index into a list of n.
func position(s string, n int) (int, bool) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > n {
		return 0, false
	}

	return p - 1, true
}
