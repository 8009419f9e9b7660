package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// MaxHistory caps the number of messages retained per session. Appends beyond
// the cap discard the oldest entries first.
const MaxHistory = 40

const titleLimit = 60

var (
	// ErrInvalidSessionID is returned when an identifier sanitizes to nothing.
	ErrInvalidSessionID = errors.New("session id must contain at least one letter, digit, '-' or '_'")
	// ErrCorruptSession is returned when a session document exists but does
	// not decode. Read paths treat it as an empty history.
	ErrCorruptSession = errors.New("session document is not valid JSON")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation. Immutable once appended.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Summary describes one stored session for listings.
type Summary struct {
	SessionID string  `json:"session_id"`
	Title     string  `json:"title"`
	UpdatedAt float64 `json:"updated_at"`
}

// Store persists one JSON document per session under Dir. It exclusively owns
// the on-disk layout; every operation is a whole-file read-modify-write.
// Concurrent writers to the same session race at file granularity (last
// writer wins) -- an accepted limitation, not a guarantee.
type Store struct {
	Dir string
}

// NewStore creates the data directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create session directory %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

// SanitizeID strips every rune outside {letters, digits, '-', '_'}. The
// result maps directly to a filename, so path separators and dots never
// survive.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewSessionID generates an identifier of the shape
// chat-YYYYMMDD-HHMMSS-<4 hex chars>.
func NewSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return "chat-" + time.Now().Format("20060102-150405") + "-" + hex
}

func (s *Store) path(id string) string {
	return filepath.Join(s.Dir, SanitizeID(id)+".json")
}

// Load returns the session's messages, an empty slice when no document
// exists, or ErrCorruptSession when the document does not decode.
func (s *Store) Load(id string) ([]Message, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session %s: %w", id, err)
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrCorruptSession, SanitizeID(id))
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Save overwrites the session document with exactly the given sequence.
// Thai and other non-ASCII text is written as-is, unescaped.
func (s *Store) Save(id string, msgs []Message) error {
	if msgs == nil {
		msgs = []Message{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msgs); err != nil {
		return fmt.Errorf("could not marshal session %s: %w", id, err)
	}
	return os.WriteFile(s.path(id), buf.Bytes(), 0o644)
}

// Append records one user/assistant exchange, then truncates the history to
// the most recent MaxHistory messages. A corrupt existing document is
// replaced rather than aborting the exchange.
func (s *Store) Append(id, userText, assistantText string) error {
	msgs, err := s.Load(id)
	if err != nil {
		if !errors.Is(err, ErrCorruptSession) {
			return err
		}
		msgs = nil
	}
	msgs = append(msgs,
		Message{Role: RoleUser, Content: userText},
		Message{Role: RoleAssistant, Content: assistantText},
	)
	if len(msgs) > MaxHistory {
		msgs = msgs[len(msgs)-MaxHistory:]
	}
	return s.Save(id, msgs)
}

// Clear empties the session's history.
func (s *Store) Clear(id string) error {
	return s.Save(id, nil)
}

// Delete removes the session document. Deleting a session that does not
// exist is not an error.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Create ensures a session document exists for id, generating an identifier
// when none is supplied. It returns the identifier actually used.
func (s *Store) Create(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		id = NewSessionID()
	}
	if SanitizeID(id) == "" {
		return "", ErrInvalidSessionID
	}
	if _, err := os.Stat(s.path(id)); errors.Is(err, os.ErrNotExist) {
		if err := s.Save(id, nil); err != nil {
			return "", err
		}
	}
	return id, nil
}

// List enumerates all sessions, newest-modified first. The title is the
// first user message truncated to 60 characters, or a timestamp placeholder
// when there is none. Unreadable documents still produce an entry.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("could not list session directory: %w", err)
	}

	type docInfo struct {
		id    string
		mtime time.Time
	}
	docs := make([]docInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		docs = append(docs, docInfo{
			id:    strings.TrimSuffix(e.Name(), ".json"),
			mtime: info.ModTime(),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].mtime.After(docs[j].mtime) })

	summaries := make([]Summary, 0, len(docs))
	for _, d := range docs {
		msgs, err := s.Load(d.id)
		if err != nil {
			msgs = nil
		}
		summaries = append(summaries, Summary{
			SessionID: d.id,
			Title:     deriveTitle(msgs, d.mtime),
			UpdatedAt: float64(d.mtime.UnixNano()) / float64(time.Second),
		})
	}
	return summaries, nil
}

func deriveTitle(msgs []Message, mtime time.Time) string {
	for _, m := range msgs {
		if m.Role == RoleUser && m.Content != "" {
			runes := []rune(m.Content)
			if len(runes) > titleLimit {
				runes = runes[:titleLimit]
			}
			return string(runes)
		}
	}
	return "New chat • " + mtime.Format("2006-01-02 15:04")
}
