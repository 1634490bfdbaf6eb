package curriculum

import "fmt"

// QuestionDoc is the flat wire form of a Question shared by the YAML
// bundle, the remote question bank and the JSON API. Only the fields of
// the declared kind are meaningful.
type QuestionDoc struct {
	ID          string `yaml:"id" json:"id" bson:"id"`
	Kind        Kind   `yaml:"kind" json:"kind" bson:"kind"`
	Prompt      string `yaml:"prompt" json:"prompt" bson:"prompt"`
	Explanation string `yaml:"explanation,omitempty" json:"explanation,omitempty" bson:"explanation,omitempty"`
	Hint        string `yaml:"hint,omitempty" json:"hint,omitempty" bson:"hint,omitempty"`
	Tier        int    `yaml:"tier,omitempty" json:"tier,omitempty" bson:"tier,omitempty"`

	// Multiple choice and deduction.
	Options  []string `yaml:"options,omitempty" json:"options,omitempty" bson:"options,omitempty"`
	Suspects []string `yaml:"suspects,omitempty" json:"suspects,omitempty" bson:"suspects,omitempty"`
	Correct  int      `yaml:"correct" json:"correct" bson:"correct"`

	// Free text.
	Answer string `yaml:"answer,omitempty" json:"answer,omitempty" bson:"answer,omitempty"`

	// Flashcard.
	Back string `yaml:"back,omitempty" json:"back,omitempty" bson:"back,omitempty"`

	// Ordering.
	Items    []ItemDoc `yaml:"items,omitempty" json:"items,omitempty" bson:"items,omitempty"`
	Template string    `yaml:"template,omitempty" json:"template,omitempty" bson:"template,omitempty"`
	Sequence []string  `yaml:"sequence,omitempty" json:"sequence,omitempty" bson:"sequence,omitempty"`

	// Deduction.
	Clues []ClueDoc `yaml:"clues,omitempty" json:"clues,omitempty" bson:"clues,omitempty"`
}

type ItemDoc struct {
	ID      string `yaml:"id" json:"id" bson:"id"`
	Content string `yaml:"content" json:"content" bson:"content"`
}

type ClueDoc struct {
	Stimulus string `yaml:"stimulus" json:"stimulus" bson:"stimulus"`
	Result   string `yaml:"result" json:"result" bson:"result"`
}

// PhaseDoc is the wire form of a Phase.
type PhaseDoc struct {
	ID         string        `yaml:"id" json:"id" bson:"id"`
	Title      string        `yaml:"title" json:"title" bson:"title"`
	Difficulty string        `yaml:"difficulty,omitempty" json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Story      string        `yaml:"story,omitempty" json:"story,omitempty" bson:"story,omitempty"`
	Questions  []QuestionDoc `yaml:"questions" json:"questions" bson:"questions"`
}

// ConceptDoc is the wire form of a Concept.
type ConceptDoc struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// LevelDoc is the wire form of a Level.
type LevelDoc struct {
	ID      string      `yaml:"id" json:"id"`
	Title   string      `yaml:"title" json:"title"`
	Order   int         `yaml:"order" json:"order"`
	Concept *ConceptDoc `yaml:"concept,omitempty" json:"concept,omitempty"`
	Phases  []PhaseDoc  `yaml:"phases" json:"phases"`
}

// ToQuestion converts the document into its typed form.
func (d QuestionDoc) ToQuestion() (Question, error) {
	q := Question{
		ID:          d.ID,
		Prompt:      d.Prompt,
		Explanation: d.Explanation,
		Hint:        d.Hint,
		Tier:        d.Tier,
	}

	switch d.Kind {
	case KindMultipleChoice:
		q.Payload = MultipleChoice{Options: d.Options, Correct: d.Correct}
	case KindFreeText:
		q.Payload = FreeText{Answer: d.Answer}
	case KindFlashcard:
		q.Payload = Flashcard{Back: d.Back}
	case KindOrdering:
		items := make([]Item, len(d.Items))
		for i, it := range d.Items {
			items[i] = Item(it)
		}
		q.Payload = Ordering{Items: items, Template: d.Template, Correct: d.Sequence}
	case KindDeduction:
		clues := make([]Clue, len(d.Clues))
		for i, c := range d.Clues {
			clues[i] = Clue(c)
		}
		q.Payload = Deduction{Clues: clues, Suspects: d.Suspects, Correct: d.Correct}
	default:
		return Question{}, fmt.Errorf("question %q: unknown kind %q", d.ID, d.Kind)
	}
	return q, nil
}

// DocFromQuestion converts a typed question into its wire form.
func DocFromQuestion(q Question) QuestionDoc {
	d := QuestionDoc{
		ID:          q.ID,
		Kind:        q.Kind(),
		Prompt:      q.Prompt,
		Explanation: q.Explanation,
		Hint:        q.Hint,
		Tier:        q.Tier,
	}

	switch p := q.Payload.(type) {
	case MultipleChoice:
		d.Options, d.Correct = p.Options, p.Correct
	case FreeText:
		d.Answer = p.Answer
	case Flashcard:
		d.Back = p.Back
	case Ordering:
		d.Items = make([]ItemDoc, len(p.Items))
		for i, it := range p.Items {
			d.Items[i] = ItemDoc(it)
		}
		d.Template, d.Sequence = p.Template, p.Correct
	case Deduction:
		d.Clues = make([]ClueDoc, len(p.Clues))
		for i, c := range p.Clues {
			d.Clues[i] = ClueDoc(c)
		}
		d.Suspects, d.Correct = p.Suspects, p.Correct
	}
	return d
}

// ToPhase converts the document into its typed form.
func (d PhaseDoc) ToPhase() (Phase, error) {
	p := Phase{ID: d.ID, Title: d.Title, Difficulty: d.Difficulty, Story: d.Story}
	p.Questions = make([]Question, 0, len(d.Questions))
	for _, qd := range d.Questions {
		q, err := qd.ToQuestion()
		if err != nil {
			return Phase{}, fmt.Errorf("phase %q: %w", d.ID, err)
		}
		p.Questions = append(p.Questions, q)
	}
	return p, nil
}

// DocFromPhase converts a typed phase into its wire form.
func DocFromPhase(p Phase) PhaseDoc {
	d := PhaseDoc{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty, Story: p.Story}
	d.Questions = make([]QuestionDoc, len(p.Questions))
	for i, q := range p.Questions {
		d.Questions[i] = DocFromQuestion(q)
	}
	return d
}

// ToLevel converts the document into its typed form.
func (d LevelDoc) ToLevel() (Level, error) {
	l := Level{ID: d.ID, Title: d.Title, Order: d.Order}
	if d.Concept != nil {
		l.Concept = &Concept{Title: d.Concept.Title, Body: d.Concept.Body}
	}
	for _, pd := range d.Phases {
		p, err := pd.ToPhase()
		if err != nil {
			return Level{}, fmt.Errorf("level %q: %w", d.ID, err)
		}
		l.Phases = append(l.Phases, p)
	}
	return l, nil
}

// DocFromLevel converts a typed level into its wire form.
func DocFromLevel(l Level) LevelDoc {
	d := LevelDoc{ID: l.ID, Title: l.Title, Order: l.Order}
	if l.Concept != nil {
		d.Concept = &ConceptDoc{Title: l.Concept.Title, Body: l.Concept.Body}
	}
	d.Phases = make([]PhaseDoc, len(l.Phases))
	for i, p := range l.Phases {
		d.Phases[i] = DocFromPhase(p)
	}
	return d
}
