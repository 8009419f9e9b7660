package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	msgs := []Message{
		{Role: RoleUser, Content: "สวัสดีครับ"},
		{Role: RoleAssistant, Content: "สวัสดีค่ะ มีอะไรให้ช่วยไหมคะ"},
		{Role: RoleUser, Content: "plain ascii too"},
	}
	if err := s.Save("default", msgs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("Load returned %d messages, want %d", len(got), len(msgs))
	}
	for i := range msgs {
		if got[i] != msgs[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], msgs[i])
		}
	}
}

func TestSaveKeepsThaiUnescaped(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("thai", []Message{{Role: RoleUser, Content: "สวัสดี"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir, "thai.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "สวัสดี") {
		t.Errorf("document should contain raw Thai text, got %q", raw)
	}
	if strings.Contains(string(raw), `\u`) {
		t.Errorf("document should not contain unicode escapes, got %q", raw)
	}
}

func TestLoadMissingSessionIsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load("nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load of missing session returned %d messages", len(got))
	}
}

func TestLoadCorruptSession(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("bad")
	if !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("Load corrupt session: err = %v, want ErrCorruptSession", err)
	}
}

func TestAppendCapsHistory(t *testing.T) {
	s := newTestStore(t)
	const exchanges = 25
	for i := 0; i < exchanges; i++ {
		if err := s.Append("long", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	got, err := s.Load("long")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(got), MaxHistory)
	}
	// 25 exchanges = 50 messages; the first 10 are dropped, so the window
	// starts at exchange 5.
	if got[0].Role != RoleUser || got[0].Content != "q5" {
		t.Errorf("oldest retained message = %+v, want user q5", got[0])
	}
	if last := got[len(got)-1]; last.Role != RoleAssistant || last.Content != fmt.Sprintf("a%d", exchanges-1) {
		t.Errorf("newest message = %+v", last)
	}
}

func TestAppendBelowCapKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Append("short", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Load("short")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 {
		t.Fatalf("history length = %d, want 6", len(got))
	}
	for i := 0; i < 3; i++ {
		if got[2*i].Content != fmt.Sprintf("q%d", i) || got[2*i+1].Content != fmt.Sprintf("a%d", i) {
			t.Errorf("exchange %d out of order: %+v %+v", i, got[2*i], got[2*i+1])
		}
	}
}

func TestAppendReplacesCorruptDocument(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir, "bad.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Append("bad", "hello", "world"); err != nil {
		t.Fatalf("Append over corrupt doc: %v", err)
	}
	got, err := s.Load("bad")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("history length = %d, want 2", len(got))
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append("c", "q", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear("c"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := s.Load("c")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("history after Clear has %d messages", len(got))
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete of missing session: %v", err)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append("gone", "q", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "gone.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("document still present after Delete: %v", err)
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"default", "default"},
		{"chat-20250901-120000-ab12", "chat-20250901-120000-ab12"},
		{"../../etc/passwd", "etcpasswd"},
		{"a b\tc", "abc"},
		{"ห้องคุย", "ห้องคุย"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := SanitizeID(tt.in); got != tt.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTraversalStaysInDir(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("../../etc/passwd", []Message{{Role: RoleUser, Content: "x"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "etcpasswd.json")); err != nil {
		t.Errorf("expected sanitized document inside the store dir: %v", err)
	}
}

func TestCreateGeneratesID(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(id, "chat-") {
		t.Errorf("generated id %q should start with chat-", id)
	}
	parts := strings.Split(id, "-")
	if len(parts) != 4 || len(parts[3]) != 4 {
		t.Errorf("generated id %q does not match chat-YYYYMMDD-HHMMSS-xxxx", id)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, id+".json")); err != nil {
		t.Errorf("Create did not persist a document: %v", err)
	}
}

func TestCreateRejectsUnsanitizableID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create("!!!"); !errors.Is(err, ErrInvalidSessionID) {
		t.Fatalf("Create(\"!!!\"): err = %v, want ErrInvalidSessionID", err)
	}
}

func TestCreateKeepsExistingHistory(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append("keep", "q", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create("keep"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("keep")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Create truncated an existing session: %d messages", len(got))
	}
}

func TestListOrderAndTitles(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("first", "a question that is quite long "+strings.Repeat("x", 60), "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("empty", nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, "broken.json"), []byte("oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Spread the mtimes so the ordering is deterministic.
	now := time.Now()
	for i, name := range []string{"first.json", "empty.json", "broken.json"} {
		ts := now.Add(time.Duration(i-3) * time.Minute)
		if err := os.Chtimes(filepath.Join(s.Dir, name), ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d sessions, want 3 (corrupt doc must still list)", len(got))
	}
	if got[0].SessionID != "broken" || got[1].SessionID != "empty" || got[2].SessionID != "first" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].SessionID, got[1].SessionID, got[2].SessionID)
	}
	if got[0].UpdatedAt < got[1].UpdatedAt || got[1].UpdatedAt < got[2].UpdatedAt {
		t.Error("UpdatedAt values are not descending")
	}

	for _, sum := range got {
		switch sum.SessionID {
		case "first":
			if runes := []rune(sum.Title); len(runes) != 60 {
				t.Errorf("title length = %d runes, want 60", len(runes))
			}
		case "empty", "broken":
			if !strings.HasPrefix(sum.Title, "New chat • ") {
				t.Errorf("session %s title = %q, want timestamp placeholder", sum.SessionID, sum.Title)
			}
		}
	}
}

func TestListEmptyDir(t *testing.T) {
	s := newTestStore(t)
	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List of empty dir returned %d entries", len(got))
	}
}
