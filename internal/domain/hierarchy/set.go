package hierarchy

// OrderedSet keeps distinct strings in first-insertion order.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet builds a set from values, dropping duplicates.
func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{index: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports membership.
func (s *OrderedSet) Has(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns a copy of the values in insertion order. Never nil.
func (s *OrderedSet) Values() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Unique returns values without duplicates or empty strings, keeping first occurrences.
func Unique(values []string) []string {
	set := NewOrderedSet()
	for _, v := range values {
		if v == "" {
			continue
		}
		set.Add(v)
	}
	return set.Values()
}
