package curriculum

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateQuestion_Valid(t *testing.T) {
	qs := []Question{
		{ID: "mc", Payload: MultipleChoice{Options: []string{"X", "Y"}, Correct: 1}},
		{ID: "ft", Payload: FreeText{Answer: "NaCl/氯化钠"}},
		{ID: "fc", Payload: Flashcard{Back: "protons"}},
		{ID: "or", Payload: Ordering{
			Items:    []Item{{"0", "H2"}, {"1", "O2"}, {"2", "H2O"}},
			Template: "{0}+{1}->{2}",
			Correct:  []string{"H2", "O2", "H2O"},
		}},
		{ID: "or-distractor", Payload: Ordering{
			Items:    []Item{{"0", "H2"}, {"1", "O2"}, {"2", "H2O"}, {"3", "CO2"}},
			Template: "{0} + {1} -> {2}",
			Correct:  []string{"H2", "O2", "H2O"},
		}},
		{ID: "dd", Payload: Deduction{
			Clues:    []Clue{{"flame", "yellow"}},
			Suspects: []string{"Na", "K"},
			Correct:  0,
		}},
	}
	for _, q := range qs {
		if err := ValidateQuestion(q); err != nil {
			t.Errorf("ValidateQuestion(%s) = %v, want nil", q.ID, err)
		}
	}
}

func TestValidateQuestion_Malformed(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want string
	}{
		{"no options", Question{ID: "a", Payload: MultipleChoice{}}, "at least 2 options"},
		{"correct out of range", Question{ID: "a", Payload: MultipleChoice{Options: []string{"X", "Y"}, Correct: 2}}, "out of range"},
		{"empty answer", Question{ID: "a", Payload: FreeText{Answer: "  "}}, "answer is empty"},
		{"missing payload", Question{ID: "a"}, "missing answer payload"},
		{"missing id", Question{Payload: Flashcard{Back: "x"}}, "id is required"},
		{"more slots than items", Question{ID: "a", Payload: Ordering{
			Items:    []Item{{"0", "H2"}, {"1", "O2"}},
			Template: "{0}+{1}->{2}",
			Correct:  []string{"H2", "O2", "H2O"},
		}}, "3 slots but 2 items"},
		{"unbuildable sequence", Question{ID: "a", Payload: Ordering{
			Items:    []Item{{"0", "H2"}, {"1", "O2"}},
			Template: "{0}->{1}",
			Correct:  []string{"H2", "H2O"},
		}}, "cannot be built"},
		{"suspect out of range", Question{ID: "a", Payload: Deduction{
			Clues:    []Clue{{"x", "y"}},
			Suspects: []string{"A", "B"},
			Correct:  5,
		}}, "out of range"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuestion(tc.q)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateLevel_DuplicateIDs(t *testing.T) {
	q := Question{ID: "dup", Payload: FreeText{Answer: "x"}}
	l := Level{ID: "l", Phases: []Phase{{ID: "p", Questions: []Question{q, q}}}}

	err := ValidateLevel(l)
	if err == nil || !strings.Contains(err.Error(), `duplicate question id "dup"`) {
		t.Errorf("ValidateLevel error = %v, want duplicate id", err)
	}
}

func TestPhase_IsCase(t *testing.T) {
	deduction := Question{ID: "d", Payload: Deduction{}}
	mc := Question{ID: "m", Payload: MultipleChoice{}}

	tests := []struct {
		name  string
		phase Phase
		want  bool
	}{
		{"all deduction", Phase{Questions: []Question{deduction, deduction}}, true},
		{"mixed", Phase{Questions: []Question{deduction, mc}}, false},
		{"named case", Phase{ID: "case-powder", Questions: []Question{mc}}, true},
		{"difficulty case", Phase{Difficulty: "Case", Questions: []Question{mc}}, true},
		{"chinese case", Phase{Title: "离子案件", Questions: []Question{mc}}, true},
		{"titled case", Phase{Title: "Case 2: the blue flame", Questions: []Question{mc}}, true},
		{"casein is not a case", Phase{Title: "Casein proteins", Questions: []Question{mc}}, false},
		{"cases of corrosion", Phase{Title: "Cases of corrosion", Questions: []Question{mc}}, false},
		{"empty", Phase{}, false},
	}
	for _, tc := range tests {
		if got := tc.phase.IsCase(); got != tc.want {
			t.Errorf("%s: IsCase() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
