package chat

// Question is one survey step. The survey ends after the question whose Next
// is empty.
type Question struct {
	ID    string
	Label string
	Text  string
	Next  string
}

const firstQuestion = "goal"

var survey = []Question{
	{ID: "goal", Label: "Goal", Text: "What is your primary financial goal? (for example retirement, buying a home or building wealth)", Next: "horizon"},
	{ID: "horizon", Label: "Investment horizon", Text: "How many years do you plan to stay invested?", Next: "risk"},
	{ID: "risk", Label: "Risk tolerance", Text: "How would you describe your risk tolerance: conservative, balanced or aggressive?", Next: "amount"},
	{ID: "amount", Label: "Monthly amount", Text: "How much are you able to invest each month?", Next: "experience"},
	{ID: "experience", Label: "Experience", Text: "How much investing experience do you have?"},
}

// Questions returns the survey in the order it is asked.
func Questions() []Question {
	out := make([]Question, 0, len(survey))
	for q, ok := questionByID(firstQuestion); ok && len(out) < len(survey); q, ok = questionByID(q.Next) {
		out = append(out, q)
	}
	return out
}

func questionByID(id string) (Question, bool) {
	for _, q := range survey {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
