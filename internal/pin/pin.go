package pin

// Set is an insertion-ordered set of pinned note ids. It is treated as
// an immutable value by the host: Toggle returns a new set so the
// reconciliation gate can detect pin changes by reference.
type Set struct {
	ids   map[string]struct{}
	order []string
}

func New(ids ...string) *Set {
	s := &Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return s
}

func (s *Set) Has(id string) bool {
	if nil == s {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int {
	if nil == s {
		return 0
	}
	return len(s.order)
}

// IDs returns the pinned ids in insertion order.
func (s *Set) IDs() []string {
	if nil == s {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Toggle returns a copy of the set with id added or removed. The
// receiver is unchanged.
func (s *Set) Toggle(id string) *Set {
	if nil == s {
		return New(id)
	}
	next := make([]string, 0, len(s.order)+1)
	found := false
	for _, cur := range s.order {
		if cur == id {
			found = true
			continue
		}
		next = append(next, cur)
	}
	if !found {
		next = append(next, id)
	}
	return New(next...)
}
