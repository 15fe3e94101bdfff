package hierarchy

import "strings"

// Match is a resolved element: its bounds, tap point, and the attribute
// value that matched the query. Matches are recomputed from every fresh
// snapshot and never cached across steps.
type Match struct {
	Element   Element
	MatchedOn string // the attribute value that satisfied the query
	CenterX   int
	CenterY   int
}

func newMatch(e Element, attr string) *Match {
	cx, cy := e.Bounds.Center()
	return &Match{Element: e, MatchedOn: attr, CenterX: cx, CenterY: cy}
}

// FindByText finds the first element whose text matches. Exact matching
// requires byte-for-byte equality; otherwise matching is case-insensitive
// substring containment. Search order is document order, so resolution is
// deterministic: when several elements match, the first encountered wins.
func FindByText(elements []Element, text string, exact bool) *Match {
	for _, e := range elements {
		if e.Text == "" {
			continue
		}
		if exact {
			if e.Text == text {
				return newMatch(e, e.Text)
			}
			continue
		}
		if containsFold(e.Text, text) {
			return newMatch(e, e.Text)
		}
	}
	return nil
}

// FindByResourceID finds the first element whose resource-id contains the
// given substring, case-insensitively.
func FindByResourceID(elements []Element, id string) *Match {
	for _, e := range elements {
		if e.ResourceID != "" && containsFold(e.ResourceID, id) {
			return newMatch(e, e.ResourceID)
		}
	}
	return nil
}

// FindByHint finds the first element whose hint contains the given
// substring, case-insensitively. Useful for unlabeled EditText fields.
func FindByHint(elements []Element, hint string) *Match {
	for _, e := range elements {
		if e.Hint != "" && containsFold(e.Hint, hint) {
			return newMatch(e, e.Hint)
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
