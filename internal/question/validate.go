package question

import (
	"fmt"
	"sort"

	"github.com/dgallion1/figgest/internal/figure"
)

// Validate checks a record's placeholder and figure bookkeeping and returns
// one message per problem found. Errored records have nothing to check.
func Validate(rec Record) []string {
	if rec.Error != "" {
		return nil
	}
	var problems []string

	figs := make(map[int]figure.Record, len(rec.Figures))
	for _, f := range rec.Figures {
		if _, dup := figs[f.Index]; dup {
			problems = append(problems, fmt.Sprintf("figure %d: duplicate index", f.Index))
			continue
		}
		figs[f.Index] = f
		if f.Placeholder != figure.Placeholder(f.Index) {
			problems = append(problems, fmt.Sprintf("figure %d: placeholder %q does not match index", f.Index, f.Placeholder))
		}
		if int(f.Kind) >= len(figure.Kinds()) {
			problems = append(problems, fmt.Sprintf("figure %d: invalid type %d", f.Index, uint8(f.Kind)))
		}
	}

	refs := map[int]int{}
	for _, text := range rec.Texts() {
		for _, n := range figure.PlaceholderIndices(text) {
			refs[n]++
		}
	}
	for n, count := range refs {
		if _, ok := figs[n]; !ok {
			problems = append(problems, fmt.Sprintf("placeholder %s has no figure", figure.Placeholder(n)))
		}
		if count > 1 {
			problems = append(problems, fmt.Sprintf("placeholder %s appears %d times", figure.Placeholder(n), count))
		}
	}

	indices := make([]int, 0, len(figs))
	for n := range figs {
		indices = append(indices, n)
		if refs[n] == 0 {
			problems = append(problems, fmt.Sprintf("figure %d is never referenced", n))
		}
	}
	sort.Ints(indices)
	for i, n := range indices {
		if n != i+1 {
			problems = append(problems, fmt.Sprintf("figure indices are not contiguous from 1: found %d at position %d", n, i+1))
			break
		}
	}
	if rec.HasFigure != (len(rec.Figures) > 0) {
		problems = append(problems, "has_figure disagrees with the figure list")
	}

	sort.Strings(problems)
	return problems
}
