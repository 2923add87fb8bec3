/* session.go
 * Contains the Session type, the explicit identity context passed to every call site that needs to know who the
 * current user is. Listeners registered with Subscribe are told about every sign in and sign out
 */

package shared

import "sync"

// Session holds the signed in user, if any, and notifies subscribers when it changes
type Session struct {
	mu        sync.RWMutex
	user      *User
	nextID    int
	listeners map[int]func(*User)
}

// NewSession creates a session. A nil user creates a signed out session
func NewSession(user *User) *Session {
	s := &Session{listeners: make(map[int]func(*User))}
	if user != nil {
		u := *user
		s.user = &u
	}
	return s
}

// Current returns a copy of the signed in user, or nil when nobody is signed in
func (s *Session) Current() *User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignIn replaces the current user and notifies subscribers
func (s *Session) SignIn(user User) {
	s.mu.Lock()
	u := user
	s.user = &u
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		copied := user
		fn(&copied)
	}
}

// SignOut clears the current user and notifies subscribers with nil
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user = nil
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

// Subscribe registers fn to be called after every sign in and sign out. Listeners run on the goroutine that
// changed the session. Returns a function that removes the listener
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshot copies the listeners in registration order. Must be called with mu held
func (s *Session) snapshot() []func(*User) {
	out := make([]func(*User), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
