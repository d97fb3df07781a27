package patch

import "testing"

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

type diffTest struct {
	name     string
	previous map[string]struct{}
	current  []string
	added    []string
	removed  []string
	same     bool
}

func TestDiff(t *testing.T) {
	tests := []diffTest{
		{name: "both empty", previous: set(), current: nil, same: true},
		{name: "identical", previous: set("a", "b"), current: []string{"a", "b"}, same: true},
		{name: "order irrelevant", previous: set("a", "b"), current: []string{"b", "a"}, same: true},
		{name: "duplicates irrelevant", previous: set("a"), current: []string{"a", "a", "a"}, same: true},
		{name: "swap", previous: set("a"), current: []string{"b"}, added: []string{"b"}, removed: []string{"a"}},
		{name: "grow", previous: set("a"), current: []string{"a", "b", "c"}, added: []string{"b", "c"}},
		{name: "shrink", previous: set("a", "b", "c"), current: []string{"b"}, removed: []string{"a", "c"}},
		{name: "from empty", previous: set(), current: []string{"x"}, added: []string{"x"}},
		{name: "to empty", previous: set("x"), current: nil, removed: []string{"x"}},
	}

	for _, test := range tests {
		p := Diff(test.previous, test.current)
		if p.Unchanged != test.same {
			t.Log(test.name, "unchanged =", p.Unchanged, "expected", test.same)
			t.Fail()
		}
		if len(p.Added) != len(test.added) {
			t.Log(test.name, "added =", p.Added, "expected", test.added)
			t.Fail()
		}
		for _, id := range test.added {
			if _, ok := p.Added[id]; !ok {
				t.Log(test.name, "missing added id", id)
				t.Fail()
			}
		}
		if len(p.Removed) != len(test.removed) {
			t.Log(test.name, "removed =", p.Removed, "expected", test.removed)
			t.Fail()
		}
		for _, id := range test.removed {
			if _, ok := p.Removed[id]; !ok {
				t.Log(test.name, "missing removed id", id)
				t.Fail()
			}
		}
	}
}

func TestDiffPure(t *testing.T) {
	previous := set("a", "b")
	current := []string{"b", "c"}
	Diff(previous, current)

	if len(previous) != 2 {
		t.Log("previous mutated:", previous)
		t.Fail()
	}
	if current[0] != "b" || current[1] != "c" {
		t.Log("current mutated:", current)
		t.Fail()
	}
}
