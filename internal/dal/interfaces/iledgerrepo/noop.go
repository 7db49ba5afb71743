package iledgerrepo

import "context"

type noop struct{}

// Noop returns a repository that persists nothing and recovers empty state.
// Used by the memory storage driver and by tests.
func Noop() Repository {
	return noop{}
}

func (noop) Persist(context.Context, Commit) error { return nil }

func (noop) Load(context.Context) (*State, error) { return &State{}, nil }

func (noop) Close() error { return nil }
