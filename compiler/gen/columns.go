package gen

import (
	"slices"

	"github.com/syssam/tabula/schema/annotation"
)

// layout is the result of a column solve.
type layout struct {
	fields []FieldDescriptor
	pinned int
}

// solveColumns assigns an absolute column to every field of the groups.
// Pinned groups keep their columns. The gaps they leave are filled by the
// first permutation of the unpinned groups, in declaration order, whose
// sizes tile the gaps exactly; the groups left over are appended after the
// highest occupied column. The search is factorial in the number of
// unpinned groups.
func solveColumns(typ string, groups []columnGroup) (layout, error) {
	var (
		owner    = make(map[int]string)
		free     []columnGroup
		occupied = -1
		out      layout
	)
	for _, g := range groups {
		if _, ok := g.pin(); !ok {
			free = append(free, g)
			continue
		}
		out.pinned++
		for _, f := range g.fields {
			c := *f.Column
			if prev, ok := owner[c]; ok {
				return layout{}, typeError(typ, ColumnAssignmentFailure, annots(annotation.KindColumn),
					"members %s and %s are both pinned to column %d", prev, g.member, c)
			}
			owner[c] = g.member
			occupied = max(occupied, c)
		}
	}
	gaps := gapsBelow(owner, occupied)
	order, ok := tile(free, gaps)
	if !ok {
		return layout{}, typeError(typ, ColumnAssignmentFailure, nil,
			"no order of the unpinned members fills the column gaps %v", gaps)
	}
	var n int
	for _, g := range free {
		n += len(g.fields)
	}
	slots := make([]int, 0, n)
	for c := 0; c <= occupied; c++ {
		if _, ok := owner[c]; !ok {
			slots = append(slots, c)
		}
	}
	for c := occupied + 1; len(slots) < n; c++ {
		slots = append(slots, c)
	}
	next := 0
	for _, i := range order {
		for _, f := range free[i].fields {
			c := slots[next]
			next++
			d := f.clone()
			d.Column = &c
			out.fields = append(out.fields, d)
		}
	}
	for _, g := range groups {
		if _, ok := g.pin(); ok {
			for _, f := range g.fields {
				out.fields = append(out.fields, f.clone())
			}
		}
	}
	slices.SortFunc(out.fields, func(a, b FieldDescriptor) int { return *a.Column - *b.Column })
	for i, f := range out.fields {
		if *f.Column != i {
			return layout{}, typeError(typ, ColumnAssignmentFailure, annots(annotation.KindColumn),
				"column %d is left empty", i)
		}
	}
	return out, nil
}

// gapsBelow returns the lengths of the runs of free columns up to the
// highest occupied one, in column order.
func gapsBelow(owner map[int]string, occupied int) []int {
	var (
		gaps []int
		run  int
	)
	for c := 0; c <= occupied; c++ {
		if _, ok := owner[c]; ok {
			if run > 0 {
				gaps = append(gaps, run)
			}
			run = 0
			continue
		}
		run++
	}
	return gaps
}

// tile searches, in lexicographic order, for a permutation of the groups
// that fills the gaps one after the other. A group never spans two gaps.
// The groups left once every gap is filled keep their declaration order.
func tile(groups []columnGroup, gaps []int) ([]int, bool) {
	var (
		used  = make([]bool, len(groups))
		order = make([]int, 0, len(groups))
		walk  func(gap, room int) bool
	)
	walk = func(gap, room int) bool {
		if room == 0 {
			gap++
			if gap == len(gaps) {
				for i := range groups {
					if !used[i] {
						order = append(order, i)
					}
				}
				return true
			}
			room = gaps[gap]
		}
		for i, g := range groups {
			if used[i] || len(g.fields) > room {
				continue
			}
			used[i] = true
			order = append(order, i)
			if walk(gap, room-len(g.fields)) {
				return true
			}
			used[i] = false
			order = order[:len(order)-1]
		}
		return false
	}
	if len(gaps) == 0 {
		for i := range groups {
			order = append(order, i)
		}
		return order, true
	}
	return order, walk(-1, 0)
}
