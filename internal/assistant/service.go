package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
)

// HistoryWindow caps how many messages a session transcript keeps. Older
// entries fall off; the assistant only sees the recent window anyway.
const HistoryWindow = 20

const transcriptSessionKey = "assistant_transcript"

// Message is one turn of the assistant conversation.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Service forwards chat turns to the backend assistant endpoint and keeps
// the transcript in the session.
type Service struct {
	api *upstream.Client
}

// NewService constructs the assistant service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

type chatTurn struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type userDetails struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Ask sends the user message with the recent transcript and returns the
// updated transcript including the assistant reply.
func (s *Service) Ask(ctx context.Context, sess *shared.Session, token string, user auth.User, message string) ([]Message, error) {
	transcript := s.Transcript(sess)

	// The backend replays the prior turns as context and appends the new
	// message itself, so the chat payload excludes it.
	chat := make([]chatTurn, 0, len(transcript))
	for _, m := range transcript {
		chat = append(chat, chatTurn{From: m.Role, Text: m.Content})
	}

	transcript = trim(append(transcript, Message{Role: "user", Content: message, SentAt: time.Now().UTC()}))

	payload := struct {
		Message     string      `json:"message"`
		Chat        []chatTurn  `json:"chat"`
		UserDetails userDetails `json:"userDetails"`
	}{
		Message:     message,
		Chat:        chat,
		UserDetails: userDetails{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}

	raw, err := s.api.PostRaw(ctx, token, "/assistant", payload)
	if err != nil {
		// Keep the user's message so a retry does not retype it.
		s.store(sess, transcript)
		return transcript, err
	}
	var reply struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.store(sess, transcript)
		return transcript, err
	}
	content := strings.TrimSpace(reply.Output)
	if content == "" {
		content = "Sorry, I couldn't find an answer. Please try rephrasing."
	}
	transcript = trim(append(transcript, Message{Role: "assistant", Content: content, SentAt: time.Now().UTC()}))
	s.store(sess, transcript)
	return transcript, nil
}

// Transcript loads the session transcript, empty when absent or corrupt.
func (s *Service) Transcript(sess *shared.Session) []Message {
	if sess == nil {
		return nil
	}
	raw := sess.Get(transcriptSessionKey)
	if raw == "" {
		return nil
	}
	var transcript []Message
	if err := json.Unmarshal([]byte(raw), &transcript); err != nil {
		sess.Delete(transcriptSessionKey)
		return nil
	}
	return transcript
}

// Reset clears the session transcript.
func (s *Service) Reset(sess *shared.Session) {
	if sess != nil {
		sess.Delete(transcriptSessionKey)
	}
}

func (s *Service) store(sess *shared.Session, transcript []Message) {
	if sess == nil {
		return
	}
	raw, err := json.Marshal(transcript)
	if err != nil {
		return
	}
	sess.Set(transcriptSessionKey, string(raw))
}

func trim(transcript []Message) []Message {
	if len(transcript) <= HistoryWindow {
		return transcript
	}
	return transcript[len(transcript)-HistoryWindow:]
}
