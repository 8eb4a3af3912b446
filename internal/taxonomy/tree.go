package taxonomy

import (
	"fmt"
	"sort"
)

// BuildCategoryTree links a flat category list into trees by ParentID and
// returns the roots ordered by id. Every parent must be present and the
// parent chain must not loop.
func BuildCategoryTree(flat []Category) ([]*Category, error) {
	byID := make(map[uint64]*Category, len(flat))
	for i := range flat {
		c := flat[i]
		c.Children = nil
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate category id %d", c.ID)
		}
		byID[c.ID] = &c
	}

	var roots []*Category
	for _, c := range byID {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			return nil, fmt.Errorf("taxonomy: category %d: unknown parent %d", c.ID, *c.ParentID)
		}
		parent.Children = append(parent.Children, c)
	}

	// A cycle leaves its members unreachable from any root.
	reached := 0
	var walk func([]*Category)
	walk = func(cs []*Category) {
		sortByID(cs)
		for _, c := range cs {
			reached++
			walk(c.Children)
		}
	}
	walk(roots)
	if reached != len(byID) {
		return nil, fmt.Errorf("taxonomy: category parents form a cycle")
	}
	return roots, nil
}

func sortByID(cs []*Category) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
