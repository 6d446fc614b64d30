package eval

import (
	"fmt"
	"sort"

	"github.com/dekarrin/diceroll/internal/syntax"
)

// member is the minimal view selection needs over either a Set's arbitrary
// Number children or a Dice's Die children: a stable original position and
// the value currently being compared.
type member struct {
	idx   int
	value float64
	kept  bool
}

// selectIndices returns the set of original indices selected by sel,
// restricted to currently-kept members, with the union taken across every
// selector in sel (§4.4.1: a SetOperator's effective selection is the union
// of all its selectors' picks at the moment it runs).
func selectIndices(members []member, selectors []syntax.SetSelector) (map[int]bool, error) {
	var kept []member
	for _, m := range members {
		if m.kept {
			kept = append(kept, m)
		}
	}

	result := make(map[int]bool)
	for _, sel := range selectors {
		switch sel.Category {
		case syntax.SelNone:
			for _, m := range kept {
				if m.value == sel.Num {
					result[m.idx] = true
				}
			}
		case syntax.SelGreater:
			for _, m := range kept {
				if m.value > sel.Num {
					result[m.idx] = true
				}
			}
		case syntax.SelLess:
			for _, m := range kept {
				if m.value < sel.Num {
					result[m.idx] = true
				}
			}
		case syntax.SelHighest, syntax.SelLowest:
			if sel.Num < 0 {
				return nil, fmt.Errorf("%w: %v", ErrNegativeCount, sel.Num)
			}
			sorted := make([]member, len(kept))
			copy(sorted, kept)
			if sel.Category == syntax.SelHighest {
				sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value > sorted[j].value })
			} else {
				sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })
			}
			n := int(sel.Num)
			if n > len(sorted) {
				n = len(sorted)
			}
			for _, m := range sorted[:n] {
				result[m.idx] = true
			}
		default:
			return nil, fmt.Errorf("%w: unknown selector category", ErrBadSelector)
		}
	}
	return result, nil
}

// firstIndex returns the smallest index present in idxSet, or -1 if empty.
func firstIndex(idxSet map[int]bool) int {
	first := -1
	for i := range idxSet {
		if first == -1 || i < first {
			first = i
		}
	}
	return first
}
