package patch

// Patch is the difference between two consecutive highlight
// computations.
type Patch struct {
	Added     map[string]struct{}
	Removed   map[string]struct{}
	Unchanged bool
}

// Diff compares the previous id set against the freshly computed id
// list. Order and duplicates in current are irrelevant; Unchanged is
// true iff both describe the same set. Runs in O(|previous|+|current|).
func Diff(previous map[string]struct{}, current []string) Patch {
	p := Patch{
		Added:   map[string]struct{}{},
		Removed: map[string]struct{}{},
	}

	seen := make(map[string]struct{}, len(current))
	for _, id := range current {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := previous[id]; !ok {
			p.Added[id] = struct{}{}
		}
	}
	for id := range previous {
		if _, ok := seen[id]; !ok {
			p.Removed[id] = struct{}{}
		}
	}

	p.Unchanged = len(p.Added) == 0 && len(p.Removed) == 0
	return p
}
