package domain

import (
	"fmt"
	"sort"
	"time"
)

// ConnID identifies one live transport connection. It doubles as the player identity.
type ConnID string

// QuestionKind distinguishes single-answer from select-all-that-apply questions.
type QuestionKind string

const (
	KindSingle QuestionKind = "single"
	KindMulti  QuestionKind = "multi"
)

// Question is one immutable entry of the question bank.
type Question struct {
	Kind           QuestionKind `json:"kind" yaml:"kind"`
	Prompt         string       `json:"prompt" yaml:"prompt"`
	Choices        []string     `json:"choices" yaml:"choices"`
	CorrectIndices []int        `json:"correctIndices" yaml:"correct"`
	Explanation    string       `json:"explanation" yaml:"explanation"`
}

// QuestionView is the part of a question players may see before answering.
type QuestionView struct {
	Kind    QuestionKind `json:"kind"`
	Prompt  string       `json:"prompt"`
	Choices []string     `json:"choices"`
}

// View strips the answer key and explanation.
func (q Question) View() QuestionView {
	choices := make([]string, len(q.Choices))
	copy(choices, q.Choices)
	return QuestionView{Kind: q.Kind, Prompt: q.Prompt, Choices: choices}
}

// Correct returns the answer key in sorted-unique form.
func (q Question) Correct() []int {
	return SortedUnique(q.CorrectIndices)
}

// Matches reports whether selected equals the answer key as a set.
// Order and duplicate entries are irrelevant; a strict subset is wrong.
func (q Question) Matches(selected []int) bool {
	want := q.Correct()
	got := SortedUnique(selected)
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// Validate checks the structural rules every loaded question must satisfy.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: %q needs at least two choices", ErrInvalidQuestion, q.Prompt)
	}
	correct := q.Correct()
	if len(correct) == 0 {
		return fmt.Errorf("%w: %q has no correct choice", ErrInvalidQuestion, q.Prompt)
	}
	for _, idx := range correct {
		if idx < 0 || idx >= len(q.Choices) {
			return fmt.Errorf("%w: %q correct index %d out of range", ErrInvalidQuestion, q.Prompt, idx)
		}
	}
	switch q.Kind {
	case KindSingle:
		if len(correct) != 1 {
			return fmt.Errorf("%w: single-answer %q has %d correct choices", ErrInvalidQuestion, q.Prompt, len(correct))
		}
	case KindMulti:
	default:
		return fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidQuestion, q.Prompt, q.Kind)
	}
	return nil
}

// SortedUnique returns a sorted copy of xs with duplicates removed.
func SortedUnique(xs []int) []int {
	out := make([]int, len(xs))
	copy(out, xs)
	sort.Ints(out)
	n := 0
	for i, x := range out {
		if i > 0 && x == out[n-1] {
			continue
		}
		out[n] = x
		n++
	}
	return out[:n]
}

// PlayerState is a player's per-room state, also used as the roster entry sent to clients.
type PlayerState struct {
	Name         string `json:"name"`
	ReadyForNext bool   `json:"readyForNext"`
	Score        int    `json:"score"`
}

// RoomSnapshot is a read-only view of a room for observers.
type RoomSnapshot struct {
	Code                 string        `json:"code"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	TotalQuestions       int           `json:"totalQuestions"`
	GameOver             bool          `json:"gameOver"`
	Players              []PlayerState `json:"players"`
	CreatedAt            time.Time     `json:"createdAt"`
}

// GameResult is the final scoreboard of a finished room.
type GameResult struct {
	ID             string        `json:"id"`
	RoomCode       string        `json:"roomCode"`
	TotalQuestions int           `json:"totalQuestions"`
	Players        []PlayerState `json:"players"`
	FinishedAt     time.Time     `json:"finishedAt"`
}
