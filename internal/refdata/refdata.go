// Package refdata provides offence reference data lookups used to enrich
// defendant records before they enter the journal.
package refdata

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/hmcts/cpp-context-defence-sub003/internal/platform/errors"
)

// Offence is one reference-data offence entry.
type Offence struct {
	Code        string
	Title       string
	Legislation string
}

// Offences looks up offence entries by code.
type Offences interface {
	// Offence returns an error with code CodeOffenceCodeUnknown for codes
	// absent from reference data.
	Offence(ctx context.Context, code string) (Offence, error)
}

// Static is an in-memory offence table seeded at construction.
type Static struct {
	mu       sync.RWMutex
	offences map[string]Offence
}

// NewStatic creates an offence table holding the given entries.
func NewStatic(offences ...Offence) *Static {
	s := &Static{offences: make(map[string]Offence, len(offences))}
	for _, o := range offences {
		s.Put(o)
	}
	return s
}

// Put adds or replaces an offence entry.
func (s *Static) Put(o Offence) {
	o.Code = strings.TrimSpace(o.Code)
	if o.Code == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offences == nil {
		s.offences = make(map[string]Offence)
	}
	s.offences[o.Code] = o
}

// Offence returns the entry for the given code.
func (s *Static) Offence(_ context.Context, code string) (Offence, error) {
	code = strings.TrimSpace(code)
	s.mu.RLock()
	offence, ok := s.offences[code]
	s.mu.RUnlock()
	if !ok {
		return Offence{}, apperrors.WithMetadata(apperrors.CodeOffenceCodeUnknown,
			"offence code is not in reference data", map[string]string{"code": code})
	}
	return offence, nil
}
