package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/config"
)

func TestBuiltinDeckIsValid(t *testing.T) {
	bank, err := app.NewQuestionBank(builtinDeck())
	if err != nil {
		t.Fatalf("builtin deck invalid: %v", err)
	}
	if bank.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", bank.Len())
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"start"}, {"migrate"}, {"deck", "check"}, {"deck", "import"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}

func TestOpenSourcesPrefersFile(t *testing.T) {
	cfg := config.Default()
	cfg.Questions.File = filepath.Join("..", "..", "config", "questions.yaml")

	res, err := openSources(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sources: %v", err)
	}
	defer res.Close()

	bank, err := app.LoadQuestionBank(context.Background(), res.loader, cfg.Questions.Deck)
	if err != nil {
		t.Fatalf("load bundled deck: %v", err)
	}
	if bank.Len() != 33 {
		t.Fatalf("expected the bundled 33-question deck, got %d", bank.Len())
	}
	if !strings.HasPrefix(res.name, "file ") {
		t.Fatalf("unexpected source %q", res.name)
	}
}

func TestDeckCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "deck", "check"})
	if err := root.Execute(); err != nil {
		t.Fatalf("deck check: %v", err)
	}
	if !strings.Contains(out.String(), "3 questions OK (source: built-in sample)") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
