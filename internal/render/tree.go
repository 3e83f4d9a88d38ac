// Package render turns a family graph into the hierarchical text shown in
// chat replies. Rendering is a pure function of its inputs.
package render

import (
	"fmt"
	"sort"
	"strings"

	"famtreebot/internal/models"
)

// Tree renders members and their parent→child edges as an ASCII tree.
//
// Roots are members that never appear as a child within the given edge set,
// ordered by (generation_level, id). Children of each node are ordered by
// date of birth ascending with unknown birth dates last, ties broken by id.
// Disconnected root subtrees are separated by one blank line.
func Tree(members []*models.Member, relationships []*models.Relationship) string {
	if len(members) == 0 {
		return "Tree is empty."
	}

	byID := make(map[int64]*models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	children := make(map[int64][]int64)
	isChild := make(map[int64]bool)
	for _, r := range relationships {
		children[r.ParentID] = append(children[r.ParentID], r.ChildID)
		isChild[r.ChildID] = true
	}

	var roots []*models.Member
	for _, m := range members {
		if !isChild[m.ID] {
			roots = append(roots, m)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].GenerationLevel != roots[j].GenerationLevel {
			return roots[i].GenerationLevel < roots[j].GenerationLevel
		}
		return roots[i].ID < roots[j].ID
	})

	lines := []string{fmt.Sprintf("🌳 *Your Family Tree* (%d members)\n", len(members))}

	// frame is one pending node of the depth-first walk. The walk uses an
	// explicit stack so arbitrarily deep trees cannot exhaust the call
	// stack, and a visited set so a cyclic edge set cannot loop forever.
	type frame struct {
		id     int64
		prefix string
		last   bool
	}

	visited := make(map[int64]bool)

	for i, root := range roots {
		lines = append(lines, memberLine(root))
		visited[root.ID] = true

		var stack []frame
		push := func(parentID int64, prefix string) {
			kids := sortChildren(children[parentID], byID)
			for j := len(kids) - 1; j >= 0; j-- {
				stack = append(stack, frame{id: kids[j], prefix: prefix, last: j == len(kids)-1})
			}
		}
		push(root.ID, "")

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			m, ok := byID[f.id]
			if !ok || visited[f.id] {
				continue
			}
			visited[f.id] = true

			connector := "├── "
			childPrefix := f.prefix + "│   "
			if f.last {
				connector = "└── "
				childPrefix = f.prefix + "    "
			}
			lines = append(lines, f.prefix+connector+memberLine(m))

			push(f.id, childPrefix)
		}

		if i < len(roots)-1 {
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func memberLine(m *models.Member) string {
	return fmt.Sprintf("%s (%s), Gen %d", m.Name, m.Gender.Initial(), m.GenerationLevel)
}

// sortChildren orders child ids by date of birth ascending; members without
// a birth date sort last, ties break by id.
func sortChildren(ids []int64, byID map[int64]*models.Member) []int64 {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := byID[sorted[i]], byID[sorted[j]]
		switch {
		case a == nil || b == nil:
			return a != nil
		case a.DOB == nil && b.DOB == nil:
			return a.ID < b.ID
		case a.DOB == nil:
			return false
		case b.DOB == nil:
			return true
		case !a.DOB.Equal(*b.DOB):
			return a.DOB.Before(*b.DOB)
		default:
			return a.ID < b.ID
		}
	})

	return sorted
}
