package session

import "context"

// State identifies the active dialog step for a user. The dialog package
// declares the full closed set of values; StateIdle is the initial state
// every cleared session returns to.
type State string

// StateIdle is the state of a session before any dialog has started.
const StateIdle State = "idle"

// Session is the ephemeral per-user conversation state: the current dialog
// step plus every answer accumulated so far. Values are strings, string
// slices, bools or byte slices (uploaded images).
type Session struct {
	UserID  int64
	State   State
	Answers map[string]any
}

// New returns a fresh session in the initial state.
func New(userID int64) *Session {
	return &Session{
		UserID:  userID,
		State:   StateIdle,
		Answers: make(map[string]any),
	}
}

// Set stores one answer.
func (s *Session) Set(key string, value any) {
	if s.Answers == nil {
		s.Answers = make(map[string]any)
	}
	s.Answers[key] = value
}

// GetString returns the answer as a string, or "" when absent or mistyped.
func (s *Session) GetString(key string) string {
	v, _ := s.Answers[key].(string)
	return v
}

// GetStringList returns the answer as a string slice, or nil.
func (s *Session) GetStringList(key string) []string {
	v, _ := s.Answers[key].([]string)
	return v
}

// GetBool returns the answer as a bool, or false.
func (s *Session) GetBool(key string) bool {
	v, _ := s.Answers[key].(bool)
	return v
}

// GetBytes returns the answer as a byte slice, or nil.
func (s *Session) GetBytes(key string) []byte {
	v, _ := s.Answers[key].([]byte)
	return v
}

// Toggle adds the option to a multi-select answer if absent and removes it
// if present, returning the updated selection. Toggling twice restores the
// original membership.
func (s *Session) Toggle(key, option string) []string {
	list := s.GetStringList(key)
	for i, existing := range list {
		if existing == option {
			list = append(list[:i:i], list[i+1:]...)
			s.Set(key, list)
			return list
		}
	}
	list = append(list, option)
	s.Set(key, list)
	return list
}

// clone returns a deep copy so callers never share mutable answer state
// with the store.
func (s *Session) clone() *Session {
	cp := &Session{
		UserID:  s.UserID,
		State:   s.State,
		Answers: make(map[string]any, len(s.Answers)),
	}
	for k, v := range s.Answers {
		switch val := v.(type) {
		case []string:
			cp.Answers[k] = append([]string(nil), val...)
		case []byte:
			cp.Answers[k] = append([]byte(nil), val...)
		default:
			cp.Answers[k] = val
		}
	}
	return cp
}

// Store holds conversation sessions keyed by user. Implementations must
// isolate users from each other and serialize concurrent access.
type Store interface {
	// Get returns the user's session, creating a fresh one in the initial
	// state if none exists yet.
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// Clear resets the user's session to the initial state with no answers.
	Clear(ctx context.Context, userID int64) error
}
