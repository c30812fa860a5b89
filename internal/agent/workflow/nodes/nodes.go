package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/parsers"
	errx "github.com/healthbot/server/internal/core/error"
	logx "github.com/healthbot/server/pkg/logger"
)

// Continuation menu choices
const (
	ChoiceNewTopic = "1"
	ChoiceExit     = "2"
)

// Deps are the collaborators the step handlers talk to.
type Deps struct {
	Console    Console
	Searcher   model.MedicalSearcher
	Summarizer model.Summarizer
	Quizzer    model.QuizGenerator
	Grader     model.QuizGrader
}

// Nodes holds one handler per executable workflow step.
type Nodes struct {
	console    Console
	searcher   model.MedicalSearcher
	summarizer model.Summarizer
	quizzer    model.QuizGenerator
	grader     model.QuizGrader
}

func NewNodes(deps Deps) (*Nodes, error) {
	if deps.Console == nil {
		return nil, fmt.Errorf("console is nil")
	}
	if deps.Searcher == nil || deps.Summarizer == nil || deps.Quizzer == nil || deps.Grader == nil {
		return nil, fmt.Errorf("collaborators are not properly initialized")
	}
	return &Nodes{
		console:    deps.Console,
		searcher:   deps.Searcher,
		summarizer: deps.Summarizer,
		quizzer:    deps.Quizzer,
		grader:     deps.Grader,
	}, nil
}

// Handlers maps every executable step to its handler.
func (n *Nodes) Handlers() map[model.Step]model.StepHandler {
	return map[model.Step]model.StepHandler{
		model.StepGetTopic:      n.GetTopic,
		model.StepSearch:        n.Search,
		model.StepSummarize:     n.Summarize,
		model.StepPresentInfo:   n.PresentInfo,
		model.StepGenerateQuiz:  n.GenerateQuiz,
		model.StepPresentQuiz:   n.PresentQuiz,
		model.StepGradeQuiz:     n.GradeQuiz,
		model.StepCheckContinue: n.CheckContinue,
	}
}

// GetTopic asks for a health topic. Blank input keeps the step.
func (n *Nodes) GetTopic(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println()
	n.console.Println(rule(70))
	n.console.Println("HEALTHBOT - AI-POWERED PATIENT EDUCATION SYSTEM")
	n.console.Println(rule(70))
	n.console.Println("I can help you learn about medical conditions, treatments, and health topics.")
	n.console.Println("All information comes from trusted medical sources like Mayo Clinic, NIH, and CDC.")
	n.console.Println(rule(70))

	topic, err := n.console.ReadLine(ctx, "\nWhat health topic or medical condition would you like to learn about?\n>>> ")
	if err != nil {
		return s, err
	}
	if topic == "" {
		n.console.Println("Please enter a valid health topic.")
		return s, nil
	}

	logx.Debug().Str("topic", topic).Msg("Topic received")

	next := s
	next.CurrentTopic = topic
	next = next.WithStep(model.StepSearch)
	return next.AddMessage(model.MessageUserInput, "Learning topic: "+topic, nil), nil
}

// Search looks the topic up on the trusted medical domains.
func (n *Nodes) Search(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Printf("\nSearching trusted medical sources for: '%s'\n", s.CurrentTopic)

	res, err := n.searcher.Search(ctx, s.CurrentTopic)
	if err != nil {
		if interrupted(ctx, err) {
			return s, err
		}
		logx.Error().Err(err).Int("status", errx.StatusOf(err)).Str("step", model.StepSearch.String()).Str("topic", s.CurrentTopic).Msg("Search failed")
		n.console.Printf("Error in search: %v\n", err)
		return s.WithStep(model.StepGetTopic), nil
	}

	docs := res.Documents
	if docs == nil {
		docs = []model.Document{}
	}
	n.console.Printf("Found %d relevant medical sources!\n", len(docs))

	next := s.AddCost(res.CostUSD)
	next.SearchResults = docs
	next = next.WithStep(model.StepSummarize)
	return next.AddMessage(model.MessageSearchCompleted,
		fmt.Sprintf("Medical search found %d sources", len(docs)),
		map[string]any{"results_count": len(docs)},
	), nil
}

// Summarize turns the search results into patient-friendly text.
func (n *Nodes) Summarize(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println("\nCreating patient-friendly summary from search results...")

	res, err := n.summarizer.Summarize(ctx, s.CurrentTopic, s.SearchResults)
	if err != nil {
		if interrupted(ctx, err) {
			return s, err
		}
		logx.Error().Err(err).Int("status", errx.StatusOf(err)).Str("step", model.StepSummarize.String()).Str("topic", s.CurrentTopic).Msg("Summary failed")
		n.console.Printf("Error creating summary: %v\n", err)
		return s.WithStep(model.StepGetTopic), nil
	}

	n.console.Println("Patient-friendly summary created from search results!")

	next := s.AddCost(res.CostUSD)
	next.Summary = res.Text
	next = next.WithStep(model.StepPresentInfo)
	return next.AddMessage(model.MessageSummaryCreated,
		"3-4 paragraph summary generated using only search results",
		map[string]any{"summary": res.Text},
	), nil
}

// PresentInfo shows the summary and waits for the patient to continue.
func (n *Nodes) PresentInfo(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println()
	n.console.Println(rule(70))
	n.console.Printf("HEALTH EDUCATION: %s\n", strings.ToUpper(s.CurrentTopic))
	n.console.Println(rule(70))
	n.console.Markdown(s.Summary)
	n.console.Println(rule(70))

	if _, err := n.console.ReadLine(ctx, "\nPlease read the information above carefully.\nPress Enter when you're ready for a comprehension check: "); err != nil {
		return s, err
	}

	next := s.WithStep(model.StepGenerateQuiz)
	return next.AddMessage(model.MessageInfoPresented, "Patient has read the health information", nil), nil
}

// GenerateQuiz writes a question from the summary. A quiz that cannot be
// graded skips straight to the continuation menu.
func (n *Nodes) GenerateQuiz(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println("\nGenerating comprehension question from the summary...")

	quiz, err := n.quizzer.GenerateQuiz(ctx, s.CurrentTopic, s.Summary)
	if err != nil {
		if interrupted(ctx, err) {
			return s, err
		}
		logx.Error().Err(err).Int("status", errx.StatusOf(err)).Str("step", model.StepGenerateQuiz.String()).Str("topic", s.CurrentTopic).Msg("Quiz generation failed")
		n.console.Printf("Error generating quiz: %v\n", err)
		return s.WithStep(model.StepCheckContinue), nil
	}

	n.console.Println("Quiz question generated from summary!")

	next := s.AddCost(quiz.CostUSD)
	next.QuizQuestion = quiz.Text
	next.CorrectAnswer = quiz.CorrectAnswer
	next = next.WithStep(model.StepPresentQuiz)
	return next.AddMessage(model.MessageQuizGenerated,
		"Quiz question created using only summary data",
		map[string]any{"quiz": quiz.Text},
	), nil
}

// PresentQuiz shows the question without its answer and re-prompts until
// the patient picks A, B, C or D.
func (n *Nodes) PresentQuiz(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println()
	n.console.Println(rule(60))
	n.console.Println("COMPREHENSION CHECK")
	n.console.Println(rule(60))
	n.console.Println(parsers.StripAnswerMarker(s.QuizQuestion))

	prompt := "Please enter your answer (A, B, C, or D): "
	var answer string
	for {
		line, err := n.console.ReadLine(ctx, prompt)
		if err != nil {
			return s, err
		}
		answer = strings.ToUpper(line)
		if lo.Contains(model.QuizChoices, answer) {
			break
		}
		prompt = "Please enter A, B, C, or D: "
	}

	next := s
	next.PatientAnswer = answer
	next = next.WithStep(model.StepGradeQuiz)
	return next.AddMessage(model.MessagePatientAnswer, "Patient answered: "+answer, nil), nil
}

// GradeQuiz grades the answer and shows the feedback.
func (n *Nodes) GradeQuiz(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println("\nGrading your answer using the health summary...")

	res, err := n.grader.GradeQuiz(ctx, model.GradeInput{
		Topic:         s.CurrentTopic,
		QuizQuestion:  s.QuizQuestion,
		PatientAnswer: s.PatientAnswer,
		CorrectAnswer: s.CorrectAnswer,
		Summary:       s.Summary,
	})
	if err != nil {
		if interrupted(ctx, err) {
			return s, err
		}
		logx.Error().Err(err).Int("status", errx.StatusOf(err)).Str("step", model.StepGradeQuiz.String()).Str("topic", s.CurrentTopic).Msg("Grading failed")
		n.console.Printf("Error grading quiz: %v\n", err)
		return s.WithStep(model.StepCheckContinue), nil
	}

	correct := res.IsCorrect()

	n.console.Println()
	n.console.Println(rule(60))
	n.console.Println("QUIZ RESULTS & FEEDBACK")
	n.console.Println(rule(60))
	n.console.Printf("Grade: %s\n", res.Grade)
	if correct {
		n.console.Println("CORRECT!")
	} else {
		n.console.Println("INCORRECT - Let's learn from this!")
	}
	n.console.Println(strings.Repeat("-", 60))
	n.console.Markdown(res.Feedback)
	n.console.Println(rule(60))

	logx.Info().Str("topic", s.CurrentTopic).Str("grade", res.Grade).Bool("correct", correct).Msg("Quiz graded")

	next := s.AddCost(res.CostUSD)
	next.QuizFeedback = res.Feedback
	next.Grade = res.Grade
	next = next.WithStep(model.StepCheckContinue)
	return next.AddMessage(model.MessageQuizGraded,
		fmt.Sprintf("Grade: %s - Justified using only summary content", res.Grade),
		map[string]any{"feedback": res.Feedback, "correct": correct, "grade": res.Grade},
	), nil
}

// CheckContinue offers another topic or exit. Any other input keeps the step.
func (n *Nodes) CheckContinue(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
	n.console.Println()
	n.console.Println(rule(50))
	n.console.Println("What would you like to do next?")
	n.console.Println(ChoiceNewTopic + ". Learn about another health topic")
	n.console.Println(ChoiceExit + ". Exit HealthBot")

	choice, err := n.console.ReadLine(ctx, "\nEnter 1 or 2: ")
	if err != nil {
		return s, err
	}

	switch choice {
	case ChoiceNewTopic:
		n.console.Println("\nResetting state for new learning session...")
		return s.ResetForNewTopic(), nil
	case ChoiceExit:
		next := s
		next.ShouldContinue = false
		next = next.WithStep(model.StepEnd)
		return next.AddMessage(model.MessageSessionEnd, "Patient chose to exit", nil), nil
	default:
		n.console.Println("Please enter 1 or 2.")
		return s, nil
	}
}
