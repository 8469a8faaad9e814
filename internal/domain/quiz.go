package domain

// QuizQuestion is a single multiple-choice question. Invariants: Options has
// exactly four entries and CorrectAnswer equals one of them.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// HasValidOptions reports whether the question satisfies the option
// invariants.
func (q QuizQuestion) HasValidOptions() bool {
	if len(q.Options) != 4 {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// DocumentInfo describes the detected document class a quiz was built from.
type DocumentInfo struct {
	Type          string   `json:"type"`
	Category      string   `json:"category,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	ContentLength int      `json:"content_length"`
}
