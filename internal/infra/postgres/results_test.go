package postgres

import (
	"testing"

	"quiz-rooms/internal/domain"
)

func TestResultArchiveRecordNeverBlocks(t *testing.T) {
	archive := NewResultArchive(nil, 1, nil)

	archive.Record(domain.GameResult{ID: "first", RoomCode: "AB3D"})
	archive.Record(domain.GameResult{ID: "second", RoomCode: "AB3D"})

	if got := len(archive.queue); got != 1 {
		t.Fatalf("expected one queued result, got %d", got)
	}
	if kept := <-archive.queue; kept.ID != "first" {
		t.Fatalf("expected the first result kept, got %s", kept.ID)
	}
}

func TestNewQuestionRowCanonicalizesAnswerKey(t *testing.T) {
	row := newQuestionRow("default", 3, domain.Question{
		Kind:           domain.KindMulti,
		Prompt:         "p",
		Choices:        []string{"a", "b", "c"},
		CorrectIndices: []int{2, 0, 2},
	})
	if row.DeckID != "default" || row.Position != 3 || row.Kind != "multi" {
		t.Fatalf("unexpected row %+v", row)
	}
	if len(row.CorrectIndices) != 2 || row.CorrectIndices[0] != 0 || row.CorrectIndices[1] != 2 {
		t.Fatalf("expected canonical answer key, got %v", row.CorrectIndices)
	}
}
