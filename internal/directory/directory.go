// Package directory resolves identity facts about users.
//
// Deciders never call the directory: the service layer resolves facts here
// and embeds them in command payloads, so a directory outage fails the
// request before anything reaches the journal. An unknown user resolves to
// the zero record rather than an error; deciders convert the zero record
// into the appropriate rejection event.
package directory

import (
	"context"
	"strings"
	"sync"
)

// User carries the directory facts deciders consume.
type User struct {
	ID                string
	OrganisationID    string
	Groups            []string
	ProsecutorOnCases []string
	// HasCrossGrantPermission marks back-office users allowed to grant
	// access on behalf of organisations other than their own.
	HasCrossGrantPermission bool
}

// Known reports whether the record resolves to a real directory entry.
func (u User) Known() bool {
	return u.ID != ""
}

// InGroup reports membership of the named group.
func (u User) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Directory looks up user records.
type Directory interface {
	// User returns the zero record when the id is unknown.
	User(ctx context.Context, userID string) (User, error)
}

// Static is an in-memory directory seeded at construction. Used by tests
// and the scenario tooling; production deployments swap in an IDAM-backed
// implementation.
type Static struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewStatic creates a directory holding the given users.
func NewStatic(users ...User) *Static {
	s := &Static{users: make(map[string]User, len(users))}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// Put adds or replaces a user record.
func (s *Static) Put(u User) {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]User)
	}
	s.users[u.ID] = u
}

// User returns the stored record, or the zero record for unknown ids.
func (s *Static) User(_ context.Context, userID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[strings.TrimSpace(userID)], nil
}
