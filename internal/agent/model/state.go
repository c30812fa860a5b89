package model

// Step is the workflow's program counter. The set of steps is closed.
type Step string

const (
	StepGetTopic      Step = "get_topic"
	StepSearch        Step = "search"
	StepSummarize     Step = "summarize"
	StepPresentInfo   Step = "present_info"
	StepGenerateQuiz  Step = "generate_quiz"
	StepPresentQuiz   Step = "present_quiz"
	StepGradeQuiz     Step = "grade_quiz"
	StepCheckContinue Step = "check_continue"
	StepEnd           Step = "end"
)

// ExecutableSteps lists every step that needs a handler, in workflow order.
var ExecutableSteps = []Step{
	StepGetTopic,
	StepSearch,
	StepSummarize,
	StepPresentInfo,
	StepGenerateQuiz,
	StepPresentQuiz,
	StepGradeQuiz,
	StepCheckContinue,
}

func (s Step) String() string {
	return string(s)
}

// IsTerminal reports whether the engine stops at this step.
func (s Step) IsTerminal() bool {
	return s == StepEnd
}

// Message types appended to the session log.
const (
	MessageUserInput       = "user_input"
	MessageSearchCompleted = "search_completed"
	MessageSummaryCreated  = "summary_created"
	MessageInfoPresented   = "info_presented"
	MessageQuizGenerated   = "quiz_generated"
	MessagePatientAnswer   = "patient_answer"
	MessageQuizGraded      = "quiz_graded"
	MessageSessionEnd      = "session_end"
)

// Message is one entry of the session log.
type Message struct {
	Type    string         `json:"type"`
	Content string         `json:"content"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Document is a single search result from a trusted medical source.
type Document struct {
	Source  string `json:"source"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// WorkflowState is the whole state of a HealthBot session.
//
// It is a value: handlers receive a copy and return the next state. The
// helper methods below never write through to the receiver's backing
// arrays, so a state a handler was given stays valid after it returns.
// Zero values mean "unset"; SearchResults distinguishes nil (not searched)
// from an empty slice (searched, nothing found).
type WorkflowState struct {
	Messages       []Message
	CurrentTopic   string
	SearchResults  []Document
	Summary        string
	QuizQuestion   string
	CorrectAnswer  string
	PatientAnswer  string
	QuizFeedback   string
	Grade          string
	ShouldContinue bool
	CurrentStep    Step

	// Accumulated LLM cost (USD) for the whole session
	TotalCostUSD float64
}

// NewWorkflowState returns the state a session starts in.
func NewWorkflowState() WorkflowState {
	return WorkflowState{
		Messages:       []Message{},
		ShouldContinue: true,
		CurrentStep:    StepGetTopic,
	}
}

// WithStep returns a copy of s positioned at step.
func (s WorkflowState) WithStep(step Step) WorkflowState {
	s.CurrentStep = step
	return s
}

// AddMessage returns a copy of s with one more log entry.
func (s WorkflowState) AddMessage(msgType, content string, extra map[string]any) WorkflowState {
	msgs := make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(msgs, s.Messages)
	s.Messages = append(msgs, Message{Type: msgType, Content: content, Extra: extra})
	return s
}

// AddCost returns a copy of s with usd added to the running total.
func (s WorkflowState) AddCost(usd float64) WorkflowState {
	s.TotalCostUSD += usd
	return s
}

// ResetForNewTopic clears every topic-scoped field and goes back to topic
// intake. The message log and the cost total span the whole session.
func (s WorkflowState) ResetForNewTopic() WorkflowState {
	next := NewWorkflowState()
	next.Messages = s.Messages
	next.TotalCostUSD = s.TotalCostUSD
	return next
}

// MessageCount is the number of log entries recorded so far.
func (s WorkflowState) MessageCount() int {
	return len(s.Messages)
}
