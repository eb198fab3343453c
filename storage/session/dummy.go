package sessionstore

import (
	"sync"

	"github.com/tomeducation/admin/core/session"
)

// DummyRepository keeps the session in memory only; for tests.
type DummyRepository struct {
	mu        sync.Mutex
	principal *session.Principal

	// FailLoad/FailSave/FailClear force the next matching call to
	// return this error.
	FailLoad  error
	FailSave  error
	FailClear error
}

var _ session.Repository = (*DummyRepository)(nil)

func NewDummyRepository() *DummyRepository {
	return &DummyRepository{}
}

func (r *DummyRepository) Load() (*session.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailLoad != nil {
		return nil, r.FailLoad
	}
	if r.principal == nil {
		return nil, nil
	}
	p := *r.principal
	return &p, nil
}

func (r *DummyRepository) Save(principal session.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	r.principal = &principal
	return nil
}

func (r *DummyRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailClear != nil {
		return r.FailClear
	}
	r.principal = nil
	return nil
}

// Stored reports the currently persisted principal, for assertions.
func (r *DummyRepository) Stored() *session.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.principal == nil {
		return nil
	}
	p := *r.principal
	return &p
}
