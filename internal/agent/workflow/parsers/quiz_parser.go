package parsers

import (
	"strings"

	"github.com/healthbot/server/internal/agent/model"
	logx "github.com/healthbot/server/pkg/logger"
)

// basic safety limit to avoid pathological model output
const maxContentLen = 64 * 1024 // 64KB

// ParseCorrectAnswer scans the quiz line by line and returns the choice named
// by the first "Correct Answer:" line. ok is false when no marker line carries
// a usable A-D letter.
func ParseCorrectAnswer(quiz string) (answer string, ok bool) {
	quiz = limit(quiz)
	for _, line := range strings.Split(quiz, "\n") {
		rest, found := cutMarker(line)
		if !found {
			continue
		}
		return normalizeChoice(rest)
	}
	return "", false
}

// StripAnswerMarker removes every marker line so the quiz can be shown to
// the patient without giving the answer away.
func StripAnswerMarker(quiz string) string {
	var b strings.Builder
	for _, line := range strings.Split(quiz, "\n") {
		if _, found := cutMarker(line); found {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// --- helpers ---

func limit(content string) string {
	if len(content) <= maxContentLen {
		return content
	}
	logx.Warn().
		Str("component", "quiz_parser").
		Int("max_len", maxContentLen).
		Int("orig_len", len(content)).
		Msg("content truncated due to size limit")
	return content[:maxContentLen]
}

// cutMarker tolerates leading whitespace and markdown emphasis around the
// marker, e.g. "**Correct Answer:** B".
func cutMarker(line string) (string, bool) {
	line = strings.TrimLeft(line, " \t*_")
	return strings.CutPrefix(line, model.CorrectAnswerMarker)
}

func normalizeChoice(s string) (string, bool) {
	s = strings.ToUpper(strings.Trim(s, " \t\r*_[]()."))
	if s == "" {
		return "", false
	}
	letter := s[:1]
	if !strings.Contains("ABCD", letter) {
		return "", false
	}
	// "B) Inhalers" is fine, "BECAUSE" is not a choice
	if len(s) > 1 {
		next := s[1]
		if next >= 'A' && next <= 'Z' {
			return "", false
		}
	}
	return letter, true
}
