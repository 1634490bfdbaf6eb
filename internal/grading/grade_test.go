package grading

import (
	"errors"
	"testing"

	"github.com/abhisek/chemquest/internal/curriculum"
)

func mcQuestion() curriculum.Question {
	return curriculum.Question{
		ID:      "mc",
		Payload: curriculum.MultipleChoice{Options: []string{"X", "Y"}, Correct: 1},
	}
}

func waterOrdering(template string) curriculum.Question {
	return curriculum.Question{
		ID: "water",
		Payload: curriculum.Ordering{
			Items: []curriculum.Item{
				{ID: "0", Content: "H2"},
				{ID: "1", Content: "O2"},
				{ID: "2", Content: "H2O"},
			},
			Template: template,
			Correct:  []string{"H2", "O2", "H2O"},
		},
	}
}

func TestGrade_MultipleChoice(t *testing.T) {
	q := mcQuestion()

	if ok, err := Grade(q, Choose(1)); err != nil || !ok {
		t.Errorf("Grade(choice 1) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := Grade(q, Choose(0)); err != nil || ok {
		t.Errorf("Grade(choice 0) = %v, %v; want false, nil", ok, err)
	}
	if _, err := Grade(q, Blank()); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Grade(blank) err = %v, want ErrIncomplete", err)
	}
}

func TestGrade_FreeText(t *testing.T) {
	q := curriculum.Question{ID: "salt", Payload: curriculum.FreeText{Answer: "NaCl/氯化钠"}}

	tests := []struct {
		input string
		want  bool
	}{
		{"nacl", true},
		{"NaCl", true},
		{"Na Cl", true},
		{"氯化钠", true},
		{"NaCl (solution)", true},
		{"naclo", false},
		{"KCl", false},
	}
	for _, tc := range tests {
		got, err := Grade(q, Type(tc.input))
		if err != nil {
			t.Fatalf("Grade(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Grade(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := Grade(q, Type("   ")); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Grade(blank text) err = %v, want ErrIncomplete", err)
	}
}

func TestGrade_FreeTextCanonicalDescriptor(t *testing.T) {
	q := curriculum.Question{ID: "gas", Payload: curriculum.FreeText{Answer: "CO_2(gas)|二氧化碳"}}
	if ok, _ := Grade(q, Type("co2")); !ok {
		t.Error("descriptor on the canonical answer should be stripped too")
	}
}

func TestGrade_Ordering(t *testing.T) {
	q := waterOrdering("{0}+{1}->{2}{2}")

	if ok, _ := Grade(q, Place("H2", "O2", "H2O")); !ok {
		t.Error("canonical order should be correct")
	}
	if ok, _ := Grade(q, Place("O2", "H2", "H2O")); !ok {
		t.Error("swapped reactants should be correct via commutative check")
	}
	if ok, _ := Grade(q, Place("H2", "H2O", "O2")); ok {
		t.Error("product on the left should be incorrect")
	}
	if _, err := Grade(q, Place("H2", "", "H2O")); !errors.Is(err, ErrIncomplete) {
		t.Errorf("unfilled slot err = %v, want ErrIncomplete", err)
	}
}

func TestGrade_Deduction(t *testing.T) {
	q := curriculum.Question{ID: "case", Payload: curriculum.Deduction{
		Clues:    []curriculum.Clue{{Stimulus: "flame", Result: "yellow"}},
		Suspects: []string{"KCl", "NaCl"},
		Correct:  1,
	}}
	if ok, _ := Grade(q, Choose(1)); !ok {
		t.Error("correct suspect should grade true")
	}
	if ok, _ := Grade(q, Choose(0)); ok {
		t.Error("wrong suspect should grade false")
	}
}

func TestGrade_Flashcard(t *testing.T) {
	q := curriculum.Question{ID: "card", Payload: curriculum.Flashcard{Back: "protons"}}
	if ok, _ := Grade(q, Recall(true)); !ok {
		t.Error("recalled flashcard should grade true")
	}
	if ok, _ := Grade(q, Recall(false)); ok {
		t.Error("forgotten flashcard should grade false")
	}
}

func TestGrade_Malformed(t *testing.T) {
	q := curriculum.Question{ID: "bad", Payload: curriculum.MultipleChoice{}}
	if _, err := Grade(q, Choose(0)); !errors.Is(err, ErrUngradable) {
		t.Errorf("err = %v, want ErrUngradable", err)
	}

	q = waterOrdering("{0}+{1}->{2}->{3}")
	if _, err := Grade(q, Place("H2", "O2", "H2O", "H2O")); !errors.Is(err, ErrUngradable) {
		t.Errorf("err = %v, want ErrUngradable for slot/item mismatch", err)
	}
}

func TestAnswerText(t *testing.T) {
	if got := AnswerText(mcQuestion(), Choose(0)); got != "X" {
		t.Errorf("AnswerText(mc) = %q, want X", got)
	}
	q := waterOrdering("{0} + {1} -> {2}")
	if got := AnswerText(q, Place("O2", "", "H2O")); got != "O2 + __ -> H2O" {
		t.Errorf("AnswerText(ordering) = %q", got)
	}
	if got := CanonicalText(q); got != "H2 + O2 -> H2O" {
		t.Errorf("CanonicalText(ordering) = %q", got)
	}
}
