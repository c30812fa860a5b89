package model

// CorrectAnswerMarker prefixes the line of a generated quiz that names the
// canonical choice.
const CorrectAnswerMarker = "Correct Answer:"

// Grades handed out by the quiz grader.
const (
	GradeCorrect   = "A"
	GradeIncorrect = "F"
)

// QuizChoices are the only answers a patient can give.
var QuizChoices = []string{"A", "B", "C", "D"}

// Quiz is a generated comprehension question.
type Quiz struct {
	Text          string
	CorrectAnswer string
	CostUSD       float64
}

// GradeInput carries everything the grader may look at.
type GradeInput struct {
	Topic         string
	QuizQuestion  string
	PatientAnswer string
	CorrectAnswer string
	Summary       string
}

// GradeResult is the grade letter plus the feedback narrative.
type GradeResult struct {
	Grade    string
	Feedback string
	CostUSD  float64
}

// IsCorrect reports whether the result is a passing grade.
func (g GradeResult) IsCorrect() bool {
	return g.Grade == GradeCorrect
}
