package telegram

import "sync"

// ConversationState is the step a user is at in a multi-message flow
type ConversationState int

const (
	// StateIdle means no flow is in progress
	StateIdle ConversationState = iota
	// StateWaitingForCode means the next plain message is a secret code
	StateWaitingForCode
)

// ConversationStore keeps per-user conversation state in memory.
// State does not survive a restart; the user simply sends /auth again.
type ConversationStore struct {
	mu     sync.Mutex
	states map[int64]ConversationState
}

// NewConversationStore creates an empty store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{states: make(map[int64]ConversationState)}
}

// Get returns the state of userID
func (s *ConversationStore) Get(userID int64) ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

// Set moves userID to state
func (s *ConversationStore) Set(userID int64, state ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateIdle {
		delete(s.states, userID)
		return
	}
	s.states[userID] = state
}

// Clear returns userID to StateIdle
func (s *ConversationStore) Clear(userID int64) {
	s.Set(userID, StateIdle)
}
