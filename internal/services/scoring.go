package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prepnest/exam-engine/internal/models"
)

// EvaluationResult is the scoring output. It is stored verbatim as the
// session's evaluation snapshot and also populates the top-level aggregates.
type EvaluationResult struct {
	TotalMarks   float64                       `json:"total_marks"`
	Correct      int                           `json:"correct"`
	Wrong        int                           `json:"wrong"`
	Skipped      int                           `json:"skipped"`
	Accuracy     float64                       `json:"accuracy"`
	SubjectStats map[string]models.SubjectStat `json:"subject_stats"`
	EvaluatedAt  time.Time                     `json:"evaluated_at"`

	// Responses carries the per-question scored copies (marks awarded,
	// correctness) that get written back onto the session document.
	Responses map[string]models.SessionResponse `json:"-"`
}

// EvaluateSession scores a session's responses against resolved question
// definitions. Pure: no I/O, no mutation of its inputs.
//
// A response whose question id does not resolve degrades to skipped rather
// than aborting the evaluation. Accuracy is computed over the question
// order, not over the submitted responses.
func EvaluateSession(order []string, responses map[string]models.SessionResponse, questions map[string]*models.Question) EvaluationResult {
	result := EvaluationResult{
		SubjectStats: make(map[string]models.SubjectStat),
		EvaluatedAt:  time.Now().UTC(),
		Responses:    make(map[string]models.SessionResponse, len(responses)),
	}

	for questionID, response := range responses {
		scored := response

		question, ok := questions[questionID]
		if !ok {
			// Dangling reference: treated as unanswered.
			result.Skipped++
			scored.MarksAwarded = 0
			scored.IsCorrect = nil
			result.Responses[questionID] = scored
			continue
		}

		if !response.Answered() {
			result.Skipped++
			scored.MarksAwarded = 0
			scored.IsCorrect = nil
			result.Responses[questionID] = scored
			if question.SubjectID != nil {
				bucket := result.SubjectStats[*question.SubjectID]
				bucket.Skipped++
				result.SubjectStats[*question.SubjectID] = bucket
			}
			continue
		}

		marks, isCorrect, counted := scoreAnswered(question, response)

		scored.MarksAwarded = marks
		if counted {
			correct := isCorrect
			scored.IsCorrect = &correct
		} else {
			scored.IsCorrect = nil
		}
		result.Responses[questionID] = scored

		result.TotalMarks += marks
		wrong := !isCorrect && marks < 0
		if isCorrect {
			result.Correct++
		} else if wrong {
			result.Wrong++
		}

		if question.SubjectID != nil {
			bucket := result.SubjectStats[*question.SubjectID]
			bucket.Marks += marks
			if isCorrect {
				bucket.Correct++
			} else if wrong {
				bucket.Wrong++
			}
			result.SubjectStats[*question.SubjectID] = bucket
		}
	}

	if len(order) > 0 {
		result.Accuracy = float64(result.Correct) / float64(len(order)) * 100
	}

	return result
}

// scoreAnswered grades one answered response. counted is false for the
// zero-mark outcome of an integer question with no defined correct value,
// which lands in neither the correct nor the wrong bucket.
func scoreAnswered(question *models.Question, response models.SessionResponse) (marks float64, isCorrect bool, counted bool) {
	correct := question.DecodeCorrect()

	switch question.Kind {
	case models.KindMCQ, models.KindMSQ, models.KindTrueFalse:
		if setsEqual(response.SelectedIDs, correct.OptionIDs) {
			return question.Marks, true, true
		}
		return -question.NegMarks, false, true

	case models.KindInteger, models.KindFillBlank:
		if correct.Integer == nil {
			return 0, false, false
		}
		if numericEqual(response.Answer, *correct.Integer) {
			return question.Marks, true, true
		}
		return -question.NegMarks, false, true

	default:
		return 0, false, false
	}
}

// setsEqual compares two identifier sets ignoring order
func setsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// numericEqual compares a free-text answer against the correct value
// numerically, so "42", "42.0" and " 42 " all match 42.
func numericEqual(answer string, correct float64) bool {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return false
	}
	return parsed == correct
}

// DeriveNegativeMarks returns the shortfall below zero, not the sum of all
// negative contributions.
func DeriveNegativeMarks(totalMarks float64) float64 {
	if totalMarks < 0 {
		return -totalMarks
	}
	return 0
}
