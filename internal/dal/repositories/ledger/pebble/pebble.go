// Package pebblerepo persists ledger commits as an append-only journal in an
// embedded pebble store. Each commit is one JSON-encoded record keyed by a
// big-endian sequence number; recovery replays the journal in key order.
package pebblerepo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/review"
)

// Repository is a pebble-backed ledger journal.
type Repository struct {
	db  *pebble.DB
	seq uint64
}

// NewRepository opens (or creates) the journal at dir.
func NewRepository(dir string) (*Repository, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble journal at %s: %w", dir, err)
	}

	r := &Repository{db: db}
	if err := r.restoreSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return r, nil
}

func (r *Repository) restoreSeq() error {
	iter, err := r.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("open journal iterator: %w", err)
	}
	defer func() { _ = iter.Close() }()

	if iter.Last() && len(iter.Key()) == 8 {
		r.seq = binary.BigEndian.Uint64(iter.Key())
	}
	return iter.Error()
}

// Persist appends one commit to the journal, synced to disk before returning.
func (r *Repository) Persist(_ context.Context, c iledgerrepo.Commit) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode commit: %w", err)
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, r.seq+1)
	if err := r.db.Set(key, payload, pebble.Sync); err != nil {
		return fmt.Errorf("append commit %d: %w", r.seq+1, err)
	}
	r.seq++

	return nil
}

// Load replays the journal and rebuilds the ledger state. Later commits for
// the same order supersede earlier ones; changes and reviews accumulate in
// commit order.
func (r *Repository) Load(_ context.Context) (*iledgerrepo.State, error) {
	iter, err := r.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("open journal iterator: %w", err)
	}
	defer func() { _ = iter.Close() }()

	state := &iledgerrepo.State{}
	for iter.First(); iter.Valid(); iter.Next() {
		var c iledgerrepo.Commit
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			return nil, fmt.Errorf("decode commit at key %x: %w", iter.Key(), err)
		}

		if c.Order != nil {
			if err := upsertOrder(state, *c.Order); err != nil {
				return nil, err
			}
		}
		if c.Change != nil {
			state.Changes = append(state.Changes, *c.Change)
		}
		if c.Review != nil {
			if err := appendReview(state, *c.Review); err != nil {
				return nil, err
			}
		}
		if c.TreasuryBalance != nil {
			state.TreasuryBalance = *c.TreasuryBalance
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}

	return state, nil
}

func upsertOrder(state *iledgerrepo.State, o order.Order) error {
	switch {
	case o.ID == uint64(len(state.Orders)):
		state.Orders = append(state.Orders, o)
	case o.ID < uint64(len(state.Orders)):
		state.Orders[o.ID] = o
	default:
		return fmt.Errorf("journal order id %d out of sequence, have %d orders", o.ID, len(state.Orders))
	}
	return nil
}

func appendReview(state *iledgerrepo.State, rev review.Review) error {
	if rev.ID != uint64(len(state.Reviews)) {
		return fmt.Errorf("journal review id %d out of sequence, have %d reviews", rev.ID, len(state.Reviews))
	}
	state.Reviews = append(state.Reviews, rev)
	return nil
}

// Close closes the underlying pebble store.
func (r *Repository) Close() error {
	return r.db.Close()
}
