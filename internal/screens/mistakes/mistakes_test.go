package mistakes

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chemquest/internal/game/gametest"
	"github.com/abhisek/chemquest/internal/router"
)

func key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

func loadBook(t *testing.T, s *BookScreen) {
	t.Helper()
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("book not loaded")
	}
}

func TestBook_ListsAndFilters(t *testing.T) {
	g := gametest.New(t, false)
	gametest.Fail(t, g, "mei", "elements", "el-symbol-na", "el-water")
	gametest.Fail(t, g, "mei", "reactions", "rx-water")

	s := New(g, "mei", "")
	loadBook(t, s)
	if len(s.book) != 3 {
		t.Fatalf("book has %d entries, want 3", len(s.book))
	}
	if !strings.Contains(s.View(100, 30), "3 to review") {
		t.Error("expected count in view")
	}

	_, cmd := s.Update(key("tab"))
	s.Update(cmd())
	if s.levelID() != "elements" || len(s.book) != 2 {
		t.Errorf("filter %q shows %d entries", s.levelID(), len(s.book))
	}

	for range len(s.levels) {
		_, cmd = s.Update(key("tab"))
	}
	s.Update(cmd())
	if s.levelID() != "" || len(s.book) != 3 {
		t.Errorf("expected filter to wrap to every level, got %q", s.levelID())
	}
}

func TestBook_EnterOpensDrill(t *testing.T) {
	g := gametest.New(t, false)
	gametest.Fail(t, g, "mei", "elements", "el-symbol-na")

	s := New(g, "mei", "elements")
	loadBook(t, s)
	_, cmd := s.Update(key("enter"))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected drill to be pushed")
	}
	if _, ok := push.Screen.(*DrillScreen); !ok {
		t.Errorf("pushed %T, want *DrillScreen", push.Screen)
	}
}

func TestBook_EmptyEnterDoesNothing(t *testing.T) {
	g := gametest.New(t, false)
	s := New(g, "mei", "")
	loadBook(t, s)
	if _, cmd := s.Update(key("enter")); cmd != nil {
		t.Error("expected no command on an empty book")
	}
	if !strings.Contains(s.View(100, 30), "0 to review") {
		t.Error("expected empty count")
	}
}

func TestDrill_WrongThenRightResolves(t *testing.T) {
	g := gametest.New(t, false)
	gametest.Fail(t, g, "mei", "elements", "el-symbol-na")
	book, err := g.Mistakes(context.Background(), "mei", "")
	if err != nil || len(book) != 1 {
		t.Fatalf("book = %v, %v", book, err)
	}

	d := NewDrill(g, "mei", book[0])
	d.Update(key("1"))
	if _, cmd := d.Update(key("enter")); cmd != nil {
		t.Fatal("wrong answer should not schedule resolution")
	}
	if !d.drill.Shake || d.drill.Solved {
		t.Fatal("expected shake on wrong answer")
	}
	if d.HandlesEscape() {
		t.Error("Esc should leave an unsolved drill")
	}

	d.Update(key("2"))
	if _, cmd := d.Update(key("enter")); cmd == nil {
		t.Fatal("expected acknowledgement timer")
	}
	if !d.drill.Solved || !d.HandlesEscape() {
		t.Fatal("expected solved drill to hold Esc")
	}
	if _, cmd := d.Update(key("1")); cmd != nil {
		t.Error("keys are ignored once solved")
	}

	_, cmd := d.Update(ackDoneMsg{})
	_, cmd = d.Update(cmd())
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected drill to close")
	}

	book, _ = g.Mistakes(context.Background(), "mei", "")
	if len(book) != 0 {
		t.Errorf("expected mistake resolved, %d left", len(book))
	}
}

func TestDrill_FreeText(t *testing.T) {
	g := gametest.New(t, false)
	gametest.Fail(t, g, "mei", "elements", "el-water")
	book, _ := g.Mistakes(context.Background(), "mei", "")

	d := NewDrill(g, "mei", book[0])
	d.Init()
	if _, cmd := d.Update(key("enter")); cmd != nil {
		t.Fatal("empty answer should be ignored")
	}
	for _, r := range "h2o" {
		d.Update(key(string(r)))
	}
	d.Update(key("enter"))
	if !d.drill.Solved {
		t.Errorf("expected %q to be accepted", d.input.Value())
	}
}

func TestDrill_OrderingPlacesAndUndoes(t *testing.T) {
	g := gametest.New(t, true)
	gametest.Fail(t, g, "mei", "reactions", "rx-water")
	book, _ := g.Mistakes(context.Background(), "mei", "")

	d := NewDrill(g, "mei", book[0])
	d.Update(key("2"))
	d.Update(key("2"))
	if len(d.placed) != 1 {
		t.Fatalf("placed = %v, want one item", d.placed)
	}
	d.Update(key("backspace"))
	if len(d.placed) != 0 {
		t.Fatal("expected undo")
	}
	if _, cmd := d.Update(key("enter")); cmd != nil {
		t.Fatal("incomplete sequence should be ignored")
	}
	for _, k := range []string{"1", "2", "3"} {
		d.Update(key(k))
	}
	d.Update(key("enter"))
	if !d.drill.Solved {
		t.Error("expected H2, O2, H2O to balance")
	}
}

func TestDrill_Flashcard(t *testing.T) {
	g := gametest.New(t, false)
	gametest.Fail(t, g, "mei", "elements", "el-card-proton")
	book, _ := g.Mistakes(context.Background(), "mei", "")

	d := NewDrill(g, "mei", book[0])
	d.Update(key("y"))
	if d.drill.Solved {
		t.Fatal("rating before flipping should be ignored")
	}
	d.Update(key("space"))
	d.Update(key("n"))
	if d.drill.Solved || d.flipped {
		t.Fatal("forgetting should flip the card back")
	}
	d.Update(key("space"))
	d.Update(key("y"))
	if !d.drill.Solved {
		t.Error("expected recall to solve the card")
	}
}
