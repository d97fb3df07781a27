package scene

import (
	"testing"

	"git.lost.host/meutraa/glow/internal/pin"
	"git.lost.host/meutraa/glow/internal/testdata"
)

func testInputs() Inputs {
	return Inputs{
		Song:     testdata.GetSong(),
		Viewport: Viewport{Start: 0, End: 7680, Rows: 10, Cols: 80},
		Pins:     pin.New(),
	}
}

func TestRebuildPlacesElements(t *testing.T) {
	s := New()
	in := testInputs()
	s.Rebuild(in)

	// Every quarter note gets a head and a duration tail
	if len(s.Elements()) != 16 {
		t.Fatal("expected 16 elements, got", len(s.Elements()))
	}
	for i := 0; i < 8; i++ {
		id := in.Song.Notes[i].ID
		els := s.ElementsFor(id)
		if len(els) != 2 {
			t.Fatal("expected 2 elements for", id, "got", len(els))
		}
		if els[0].Col != i*10 {
			t.Log(id, "col =", els[0].Col, "expected", i*10)
			t.Fail()
		}
	}

	// Higher pitch renders on a higher row
	first := s.ElementsFor("n0")[0]
	last := s.ElementsFor("n7")[0]
	if first.Row != 9 || last.Row != 0 {
		t.Log("rows:", first.Row, last.Row)
		t.Fail()
	}
}

func TestRebuildClipsToViewport(t *testing.T) {
	s := New()
	in := testInputs()
	in.Viewport.Start = 2 * 960
	in.Viewport.End = 4 * 960
	s.Rebuild(in)

	if len(s.ElementsFor("n0")) != 0 {
		t.Fail()
	}
	if len(s.ElementsFor("n2")) == 0 || len(s.ElementsFor("n3")) == 0 {
		t.Fail()
	}
	if len(s.ElementsFor("n4")) != 0 {
		t.Fail()
	}
}

func TestRebuildSeedsPinsAndSelection(t *testing.T) {
	s := New()
	in := testInputs()
	in.Pins = pin.New("n2")
	in.SelectedID = "n3"
	s.Rebuild(in)

	for _, e := range s.ElementsFor("n2") {
		if !e.Has(Pinned) {
			t.Fatal("pin not seeded at rebuild")
		}
	}
	for _, e := range s.ElementsFor("n3") {
		if !e.Selected {
			t.Fatal("selection not seeded at rebuild")
		}
	}
	if s.ElementsFor("n0")[0].Has(Pinned) {
		t.Fail()
	}
}

func TestRebuildDestroysMarkers(t *testing.T) {
	s := New()
	in := testInputs()
	s.Rebuild(in)
	gen := s.Generation()

	s.Mark("n1", Playing)
	s.Rebuild(in)
	if s.Generation() != gen+1 {
		t.Fail()
	}
	for _, e := range s.ElementsFor("n1") {
		if e.Has(Playing) {
			t.Fatal("marker survived a rebuild")
		}
	}
}

func TestMarkUnmark(t *testing.T) {
	s := New()
	s.Rebuild(testInputs())

	toggles := 0
	s.OnToggle(func(e *Element) { toggles++ })

	s.Mark("n1", Playing)
	for _, e := range s.ElementsFor("n1") {
		if !e.Has(Playing) {
			t.Fatal("mark did not stick")
		}
		if e.Scale <= 1.0 {
			t.Fatal("playing emphasis scale not applied")
		}
	}
	if toggles != 2 {
		t.Log("toggles =", toggles)
		t.Fail()
	}

	// Marking again is a no-op, no redraw
	s.Mark("n1", Playing)
	if toggles != 2 {
		t.Log("idempotent mark redrew:", toggles)
		t.Fail()
	}

	s.Unmark("n1", Playing)
	for _, e := range s.ElementsFor("n1") {
		if e.Has(Playing) || e.Scale != 1.0 {
			t.Fatal("unmark did not restore the element")
		}
	}

	// Unknown ids are silent no-ops
	s.Mark("missing", Playing)
	s.Unmark("missing", Playing)
}

func TestShouldRebuild(t *testing.T) {
	base := testInputs()

	if ShouldRebuild(base, base) {
		t.Fatal("identical inputs must not rebuild")
	}

	song := base
	song.Song = testdata.GetSong() // new reference, same content
	if !ShouldRebuild(base, song) {
		t.Fatal("song reference change must rebuild")
	}

	vp := base
	vp.Viewport.Start += 960
	vp.Viewport.End += 960
	if !ShouldRebuild(base, vp) {
		t.Fatal("viewport change must rebuild")
	}

	sel := base
	sel.SelectedID = "n5"
	if !ShouldRebuild(base, sel) {
		t.Fatal("selection change must rebuild")
	}

	pins := base
	pins.Pins = base.Pins.Toggle("n1")
	if !ShouldRebuild(base, pins) {
		t.Fatal("pin set change must rebuild")
	}

	region := base
	region.Loop = Region{Start: 0, End: 960}
	if !ShouldRebuild(base, region) {
		t.Fatal("loop region change must rebuild")
	}
}

func TestRebuildEmptyInputs(t *testing.T) {
	s := New()
	s.Rebuild(Inputs{})
	if len(s.Elements()) != 0 {
		t.Fail()
	}
	s.Rebuild(Inputs{Song: testdata.GetSong()})
	if len(s.Elements()) != 0 {
		t.Fail()
	}
}
