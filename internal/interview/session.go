package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/memory"
	"github.com/dddTech2/CV-CREATOR/internal/parsing"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// State is the round state machine position
type State string

// Session states
const (
	StateNotStarted      State = "not_started"
	StateAwaitingAnswers State = "awaiting_answers"
	StateRoundComplete   State = "round_complete"
	StateFinished        State = "finished"
)

// QuestionStatus is the terminal or pending status of one question
type QuestionStatus string

// Question statuses
const (
	StatusPending  QuestionStatus = "pending"
	StatusAnswered QuestionStatus = "answered"
	StatusSkipped  QuestionStatus = "skipped"
)

// Round sizing and cap
const (
	MaxRounds            = 3
	MaxQuestionsPerRound = 7
)

// Sentinel errors for invalid transitions
var (
	ErrInterviewFinished = errors.New("interview already finished")
	ErrNoActiveRound     = errors.New("no active round")
	ErrRoundOpen         = errors.New("round still has unresolved questions")
	ErrRoundInProgress   = errors.New("round already in progress")
	ErrUnknownQuestion   = errors.New("unknown question id")
)

// Question is one interview question with its lifecycle state. PreFill carries
// a previously remembered answer as a suggestion; it still needs explicit
// confirmation via Answer to count.
type Question struct {
	ID      string         `json:"id"`
	Gap     types.Gap      `json:"gap"`
	Text    string         `json:"text"`
	PreFill string         `json:"pre_fill,omitempty"`
	Status  QuestionStatus `json:"status"`
	Answer  string         `json:"answer,omitempty"`
}

// Session is the round state machine for one interview. It is not safe for
// concurrent use; one session serves one user flow at a time. An abandoned
// session parks in place and can resume later.
type Session struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Language string     `json:"language"`
	State    State      `json:"state"`
	Round    int        `json:"round"`
	Current  []Question `json:"current"`
	History  []Question `json:"history"`

	reqs       *types.JobRequirements
	unresolved []types.Gap
	asked      map[string]bool
}

// NewSession creates a parked session from a gap analysis
func NewSession(userID string, result *types.GapAnalysisResult, reqs *types.JobRequirements, language string) *Session {
	unresolved := make([]types.Gap, len(result.Gaps))
	copy(unresolved, result.Gaps)

	return &Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Language:   language,
		State:      StateNotStarted,
		reqs:       reqs,
		unresolved: unresolved,
		asked:      make(map[string]bool),
	}
}

// StartRound opens the next round: it selects the highest-priority unresolved
// gaps not yet asked this session, phrases them, and attaches pre-fill
// suggestions from the skill memory. Phrasing failures fall back to templates
// and never block.
func (s *Session) StartRound(ctx context.Context, client llm.Client, store memory.Store) ([]Question, error) {
	switch s.State {
	case StateFinished:
		return nil, ErrInterviewFinished
	case StateAwaitingAnswers:
		return nil, ErrRoundInProgress
	}
	if s.Round >= MaxRounds {
		s.State = StateFinished
		return nil, ErrInterviewFinished
	}

	gaps := s.selectGaps()
	if len(gaps) == 0 {
		s.State = StateFinished
		return nil, ErrInterviewFinished
	}

	texts := GenerateQuestionTexts(ctx, client, s.reqs, gaps, s.Language)

	questions := make([]Question, len(gaps))
	for i, gap := range gaps {
		q := Question{
			ID:     uuid.New().String(),
			Gap:    gap,
			Text:   texts[i],
			Status: StatusPending,
		}
		if store != nil {
			if entry, err := store.Get(ctx, s.UserID, gap.Skill); err == nil && entry != nil {
				q.PreFill = entry.Answer
			}
		}
		s.asked[parsing.NormalizeSkill(gap.Skill)] = true
		questions[i] = q
	}

	s.Current = questions
	s.Round++
	s.State = StateAwaitingAnswers
	return questions, nil
}

// selectGaps picks up to MaxQuestionsPerRound unresolved gaps not yet asked,
// in priority order
func (s *Session) selectGaps() []types.Gap {
	var selected []types.Gap
	for _, gap := range s.unresolved {
		if s.asked[parsing.NormalizeSkill(gap.Skill)] {
			continue
		}
		selected = append(selected, gap)
		if len(selected) == MaxQuestionsPerRound {
			break
		}
	}
	return selected
}

// Answer marks a question answered with the given text. Submitting an
// unmodified pre-fill is how a suggestion gets confirmed.
func (s *Session) Answer(questionID, answer string) error {
	return s.resolve(questionID, StatusAnswered, answer)
}

// Skip marks a question skipped, recording the no-experience sentinel
func (s *Session) Skip(questionID string) error {
	return s.resolve(questionID, StatusSkipped, SkipSentinel(s.Language))
}

func (s *Session) resolve(questionID string, status QuestionStatus, answer string) error {
	if s.State != StateAwaitingAnswers {
		return ErrNoActiveRound
	}
	for i := range s.Current {
		if s.Current[i].ID == questionID {
			s.Current[i].Status = status
			s.Current[i].Answer = answer
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
}

// CompleteRound closes the current round. Every question must hold a terminal
// status; one left pending keeps the round open so no gap is silently dropped.
// Answered questions are saved to the skill memory. The session finishes unless
// unresolved must-have gaps remain and the round cap allows another round.
func (s *Session) CompleteRound(ctx context.Context, store memory.Store) error {
	if s.State != StateAwaitingAnswers {
		return ErrNoActiveRound
	}
	for _, q := range s.Current {
		if q.Status == StatusPending {
			return fmt.Errorf("%w: %q", ErrRoundOpen, q.Text)
		}
	}

	answered := make(map[string]bool)
	for _, q := range s.Current {
		if q.Status != StatusAnswered {
			continue
		}
		answered[parsing.NormalizeSkill(q.Gap.Skill)] = true
		if store != nil {
			if err := store.Upsert(ctx, s.UserID, q.Gap.Skill, q.Answer); err != nil {
				return fmt.Errorf("failed to save answer to skill memory: %w", err)
			}
		}
	}

	// Answered gaps are resolved; skipped ones stay unresolved but will not
	// be asked again this session
	remaining := s.unresolved[:0]
	for _, gap := range s.unresolved {
		if !answered[parsing.NormalizeSkill(gap.Skill)] {
			remaining = append(remaining, gap)
		}
	}
	s.unresolved = remaining

	s.History = append(s.History, s.Current...)
	s.Current = nil
	s.State = StateRoundComplete

	if !s.shouldContinue() {
		s.State = StateFinished
	}
	return nil
}

// shouldContinue reports whether another round is warranted: unresolved
// must-have gaps remain, at least one of them is still askable, and the cap
// has not been reached
func (s *Session) shouldContinue() bool {
	if s.Round >= MaxRounds {
		return false
	}
	for _, gap := range s.unresolved {
		if gap.IsCritical() && !s.asked[parsing.NormalizeSkill(gap.Skill)] {
			return true
		}
	}
	return false
}

// AnsweredQuestions returns every answered question across completed rounds,
// in interview order. This is the classification stage's input.
func (s *Session) AnsweredQuestions() []Question {
	var answered []Question
	for _, q := range s.History {
		if q.Status == StatusAnswered {
			answered = append(answered, q)
		}
	}
	return answered
}

// UnresolvedGaps returns the gaps still without a qualifying answer
func (s *Session) UnresolvedGaps() []types.Gap {
	out := make([]types.Gap, len(s.unresolved))
	copy(out, s.unresolved)
	return out
}
