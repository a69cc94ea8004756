// Package store provides thread-safe in-memory storage for calculator
// sessions and their evaluation history.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calctrace/calctrace/pkg/expr"
	"github.com/calctrace/calctrace/pkg/format"
)

// EvaluationState represents the outcome of a recorded evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// Session is a persistent calculator context: a variable table and a format
// policy that survive across evaluations.
type Session struct {
	ID         string             `json:"id"`
	Variables  map[string]float64 `json:"variables"`
	Policy     format.Policy      `json:"-"`
	CreateTime time.Time          `json:"createTime"`
	UpdateTime time.Time          `json:"updateTime"`
}

// Evaluation is one recorded evaluation within a session.
type Evaluation struct {
	ID         string          `json:"id"`
	Expression string          `json:"expression"`
	State      EvaluationState `json:"state"`
	Result     float64         `json:"result,omitempty"`
	Steps      []expr.Step     `json:"steps,omitempty"`
	Error      string          `json:"error,omitempty"`
	Time       time.Time       `json:"time"`
}

// Store is a thread-safe in-memory store of sessions. The lock protects the
// maps only; evaluation itself happens outside the store.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	history     map[string][]*Evaluation
	evalCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		history:  make(map[string][]*Evaluation),
	}
}

// CreateSession creates a session with the given initial variables and
// policy. The session ID is a fresh UUID.
func (s *Store) CreateSession(vars map[string]float64, policy format.Policy) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		Variables:  make(map[string]float64, len(vars)),
		Policy:     policy,
		CreateTime: now,
		UpdateTime: now,
	}
	for k, v := range vars {
		sess.Variables[k] = v
	}
	s.sessions[sess.ID] = sess
	return sess
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session '%s' not found", id)
	}
	return sess, nil
}

// ListSessions returns all sessions.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, sess)
	}
	return result
}

// DeleteSession removes a session and its history.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session '%s' not found", id)
	}
	delete(s.sessions, id)
	delete(s.history, id)
	return nil
}

// Variables returns a copy of a session's variable table.
func (s *Store) Variables(id string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session '%s' not found", id)
	}
	out := make(map[string]float64, len(sess.Variables))
	for k, v := range sess.Variables {
		out[k] = v
	}
	return out, nil
}

// SetVariable assigns a variable in a session.
func (s *Store) SetVariable(id, name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session '%s' not found", id)
	}
	sess.Variables[name] = value
	sess.UpdateTime = time.Now()
	return nil
}

// DeleteVariable removes a variable from a session.
func (s *Store) DeleteVariable(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session '%s' not found", id)
	}
	delete(sess.Variables, name)
	sess.UpdateTime = time.Now()
	return nil
}

// SetPolicy replaces a session's format policy.
func (s *Store) SetPolicy(id string, policy format.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session '%s' not found", id)
	}
	sess.Policy = policy
	sess.UpdateTime = time.Now()
	return nil
}

// AppendEvaluation records an evaluation in a session's history, assigning
// it a sequential ID.
func (s *Store) AppendEvaluation(sessionID string, e *Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session '%s' not found", sessionID)
	}

	s.evalCounter++
	e.ID = fmt.Sprintf("eval-%d", s.evalCounter)
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	s.history[sessionID] = append(s.history[sessionID], e)
	sess.UpdateTime = e.Time
	return nil
}

// History returns a session's evaluations in recording order.
func (s *Store) History(sessionID string) ([]*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, fmt.Errorf("session '%s' not found", sessionID)
	}
	out := make([]*Evaluation, len(s.history[sessionID]))
	copy(out, s.history[sessionID])
	return out, nil
}
