package hierarchy

import "strings"

// Hierarchy is the read-only tree derived from a flat collection of entities.
// Options holds every distinct value seen per level; children maps each parent
// value to the distinct values found one level below it.
type Hierarchy struct {
	levels   []Level
	options  map[Level]*OrderedSet
	children map[Level]map[string]*OrderedSet
}

// Build derives the hierarchy for the given ordered levels in a single pass.
// A present value is always listed in its level's options and always has a
// (possibly empty) child set. A present child with an absent parent is kept as
// an orphan option that no cascade can reach.
func Build[E Entity](levels []Level, entities []E) *Hierarchy {
	h := &Hierarchy{
		levels:   append([]Level(nil), levels...),
		options:  make(map[Level]*OrderedSet, len(levels)),
		children: make(map[Level]map[string]*OrderedSet, len(levels)),
	}
	for _, level := range levels {
		h.options[level] = NewOrderedSet()
		h.children[level] = make(map[string]*OrderedSet)
	}

	for _, entity := range entities {
		for i, level := range levels {
			value := entity.LevelValue(level)
			if strings.TrimSpace(value) == "" {
				continue
			}
			h.options[level].Add(value)
			kids, ok := h.children[level][value]
			if !ok {
				kids = NewOrderedSet()
				h.children[level][value] = kids
			}
			if i+1 >= len(levels) {
				continue
			}
			if child := entity.LevelValue(levels[i+1]); strings.TrimSpace(child) != "" {
				kids.Add(child)
			}
		}
	}
	return h
}

// Levels returns the ordered level chain.
func (h *Hierarchy) Levels() []Level {
	return append([]Level(nil), h.levels...)
}

// Contains reports whether level is part of the chain.
func (h *Hierarchy) Contains(level Level) bool {
	return h.indexOf(level) >= 0
}

// Child returns the level directly below level.
func (h *Hierarchy) Child(level Level) (Level, bool) {
	idx := h.indexOf(level)
	if idx < 0 || idx+1 >= len(h.levels) {
		return "", false
	}
	return h.levels[idx+1], true
}

// Below returns every level strictly below level, top-down.
func (h *Hierarchy) Below(level Level) []Level {
	idx := h.indexOf(level)
	if idx < 0 {
		return nil
	}
	return append([]Level(nil), h.levels[idx+1:]...)
}

// Above returns every level strictly above level, top-down.
func (h *Hierarchy) Above(level Level) []Level {
	idx := h.indexOf(level)
	if idx < 0 {
		return nil
	}
	return append([]Level(nil), h.levels[:idx]...)
}

// Options lists every distinct value recorded at level.
func (h *Hierarchy) Options(level Level) []string {
	return h.options[level].Values()
}

// HasOption reports whether value was recorded at level.
func (h *Hierarchy) HasOption(level Level, value string) bool {
	return h.options[level].Has(value)
}

// Children lists the values recorded below parent. Unknown parents yield an empty slice.
func (h *Hierarchy) Children(level Level, parent string) []string {
	byParent, ok := h.children[level]
	if !ok {
		return []string{}
	}
	return byParent[parent].Values()
}

// Descendants is the ordered union of Children(level, p) for every p in parents.
func (h *Hierarchy) Descendants(level Level, parents []string) []string {
	out := NewOrderedSet()
	byParent := h.children[level]
	for _, parent := range parents {
		kids, ok := byParent[parent]
		if !ok {
			continue
		}
		for _, kid := range kids.items {
			out.Add(kid)
		}
	}
	return out.Values()
}

// ChildMap returns a copy of the parent→children mapping for level.
func (h *Hierarchy) ChildMap(level Level) map[string][]string {
	byParent := h.children[level]
	out := make(map[string][]string, len(byParent))
	for parent, kids := range byParent {
		out[parent] = kids.Values()
	}
	return out
}

func (h *Hierarchy) indexOf(level Level) int {
	for i, l := range h.levels {
		if l == level {
			return i
		}
	}
	return -1
}
