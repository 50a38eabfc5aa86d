package sentiment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScore_KnownAndUnknown(t *testing.T) {
	lex := Default()
	if got := lex.Score("good"); got != 3 {
		t.Errorf("Score(good) = %d, want 3", got)
	}
	if got := lex.Score("terrible"); got != -3 {
		t.Errorf("Score(terrible) = %d, want -3", got)
	}
	if got := lex.Score("zyzzogeton"); got != 0 {
		t.Errorf("Score(unknown) = %d, want 0", got)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	lex := Default()
	if got := lex.Score("GOOD"); got != 3 {
		t.Errorf("Score(GOOD) = %d, want 3", got)
	}
}

func TestDefault_ScoresInRange(t *testing.T) {
	for w, s := range Default() {
		if s < -5 || s > 5 {
			t.Errorf("default lexicon %q = %d, out of [-5, 5]", w, s)
		}
	}
}

func TestDefault_ReturnsCopy(t *testing.T) {
	a := Default()
	a["good"] = -5
	if got := Default().Score("good"); got != 3 {
		t.Errorf("Default shares storage: Score(good) = %d", got)
	}
}

func TestLoad_MergesOverDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.txt")
	content := "# custom scores\ngood 5\nmeh -1\n\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := lex.Score("good"); got != 5 {
		t.Errorf("user override lost: Score(good) = %d, want 5", got)
	}
	if got := lex.Score("meh"); got != -1 {
		t.Errorf("user entry lost: Score(meh) = %d, want -1", got)
	}
	if got := lex.Score("terrible"); got != -3 {
		t.Errorf("default entry lost: Score(terrible) = %d, want -3", got)
	}
}

func TestLoad_RejectsBadLines(t *testing.T) {
	cases := map[string]string{
		"missing score": "good\n",
		"bad number":    "good three\n",
		"out of range":  "good 9\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lexicon.txt")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("write lexicon: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load should reject malformed lexicon")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load should fail on missing file")
	}
}
