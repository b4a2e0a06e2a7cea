package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"profilescope/internal/models"
	"profilescope/pkg/logger"
)

// ErrSessionNotFound indicates an unknown or already-evicted chat session
var ErrSessionNotFound = errors.New("chat session not found")

// chatApology is the fixed reply surfaced when a send fails mid-stream.
// The session stays usable afterwards.
const chatApology = "Sorry, I ran into a problem answering that. Please ask again."

const chatInstructionFormat = `You are an assistant answering follow-up questions about one specific GitHub profile that was just analyzed.
Only discuss this profile, its repositories and the assessment below. Politely refuse anything off topic.
Keep answers short and grounded in the data.

Profile:
%s

Assessment:
%s`

// ChatSession is one interactive follow-up conversation, seeded once from
// the profile and its assessment. Callers must serialize sends per session.
type ChatSession struct {
	ID        string
	Handle    string
	CreatedAt time.Time

	lastUsed time.Time
	chat     *genai.Chat
}

// ChatService owns the in-memory chat sessions and streams replies
type ChatService struct {
	client        *genai.Client
	model         string
	sessionTTL    time.Duration
	sweepInterval time.Duration
	maxSessions   int

	mu       sync.Mutex
	sessions map[string]*ChatSession
	stop     chan struct{}
	stopOnce sync.Once
}

func NewChatService(client *genai.Client, model string, sessionTTL, sweepInterval time.Duration, maxSessions int) *ChatService {
	return &ChatService{
		client:        client,
		model:         model,
		sessionTTL:    sessionTTL,
		sweepInterval: sweepInterval,
		maxSessions:   maxSessions,
		sessions:      make(map[string]*ChatSession),
		stop:          make(chan struct{}),
	}
}

// Open creates a session whose context is built once from the static
// profile and assessment data and never re-derived
func (s *ChatService) Open(ctx context.Context, profile *models.Profile, assessment *models.Assessment) (string, error) {
	instruction, err := buildChatInstruction(profile, assessment)
	if err != nil {
		return "", fmt.Errorf("failed to build chat context: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
	}

	chat, err := s.client.Chats.Create(ctx, s.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open chat session: %w", err)
	}

	now := time.Now()
	session := &ChatSession{
		ID:        uuid.New().String(),
		Handle:    profile.Login,
		CreatedAt: now,
		lastUsed:  now,
		chat:      chat,
	}

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[session.ID] = session
	s.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"session": session.ID,
		"handle":  session.Handle,
	}).Info("Chat session opened")

	return session.ID, nil
}

// Exists reports whether a session is currently live
func (s *ChatService) Exists(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Send streams the model's reply for one user message through emit, chunk by
// chunk in arrival order. A model or network failure is surfaced as the
// fixed apology text and leaves the session usable.
func (s *ChatService) Send(ctx context.Context, sessionID, message string, emit func(chunk string) error) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		session.lastUsed = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	for chunk, err := range session.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			logger.WithError(err).WithField("session", sessionID).Warn("Chat stream failed")
			return emit(chatApology)
		}
		if text := chunk.Text(); text != "" {
			if err := emit(text); err != nil {
				// The consumer went away; nothing left to stream to
				return err
			}
		}
	}

	return nil
}

// StartJanitor begins the background sweep that evicts idle sessions
func (s *ChatService) StartJanitor() {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.evictIdle()
			}
		}
	}()
}

// StopJanitor stops the background sweep
func (s *ChatService) StopJanitor() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *ChatService) evictIdle() {
	cutoff := time.Now().Add(-s.sessionTTL)
	evicted := 0

	s.mu.Lock()
	for id, session := range s.sessions {
		if session.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.mu.Unlock()

	if evicted > 0 {
		logger.Infof("Evicted %d idle chat sessions", evicted)
	}
}

func (s *ChatService) evictOldestLocked() {
	var oldestID string
	var oldestUsed time.Time
	for id, session := range s.sessions {
		if oldestID == "" || session.lastUsed.Before(oldestUsed) {
			oldestID = id
			oldestUsed = session.lastUsed
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

func buildChatInstruction(profile *models.Profile, assessment *models.Assessment) (string, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", err
	}
	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(chatInstructionFormat, profileJSON, assessmentJSON), nil
}
