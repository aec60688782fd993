package submission

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Transition errors. Handlers branch on these to decide whether to
// respond with a correction or ignore the event entirely.
var (
	// ErrNoPending means the user has no live submission; the event does
	// not match any expected state and is ignored.
	ErrNoPending = errors.New("no pending submission")

	// ErrWrongStage means a live submission exists but is not waiting
	// for this kind of input; the event is ignored.
	ErrWrongStage = errors.New("submission is not at the expected stage")
)

// Manager drives the per-user submission state machine over a Store.
// Every method holds the store lock only for the map operation itself;
// the expensive fetch/normalize/submit work happens outside, after
// Take has removed the entry.
type Manager struct {
	store Store
}

// NewManager creates a Manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Begin creates a new pending submission in the awaiting-emoji stage,
// unconditionally replacing any earlier one for the same user
// (last submission wins, matching the platform's conversational flow).
// Returns the replaced submission, if any, so callers may acknowledge
// the discard.
func (m *Manager) Begin(p *Pending) *Pending {
	p.ID = uuid.NewString()
	p.Stage = StageAwaitingEmoji

	prev, _ := m.store.Take(p.OwnerID)
	m.store.Set(p)

	evt := log.Info().
		Str("submission_id", p.ID).
		Int64("owner_id", p.OwnerID).
		Str("kind", string(p.Kind))
	if prev != nil {
		evt = evt.Str("replaced_submission_id", prev.ID)
	}
	evt.Msg("Submission started")

	return prev
}

// Get returns the user's live submission without mutating it.
func (m *Manager) Get(ownerID int64) (*Pending, bool) {
	return m.store.Get(ownerID)
}

// ConfirmEmoji records the validated emoji and advances the submission
// to the awaiting-pack stage. The caller validates the emoji itself;
// this method only enforces the stage transition. The whole
// read-check-mutate runs inside the store's critical section, so a
// media replacement never interleaves with it and loses the new entry.
func (m *Manager) ConfirmEmoji(ownerID int64, emoji string) (*Pending, error) {
	wrongStage := false
	p, ok := m.store.Mutate(ownerID, func(p *Pending) bool {
		if p.Stage != StageAwaitingEmoji {
			wrongStage = true
			return false
		}
		p.Emoji = emoji
		p.Stage = StageAwaitingPack
		return false
	})
	if !ok {
		return nil, ErrNoPending
	}
	if wrongStage {
		return nil, ErrWrongStage
	}

	log.Info().
		Str("submission_id", p.ID).
		Int64("owner_id", ownerID).
		Str("emoji", emoji).
		Msg("Emoji confirmed")

	return p, nil
}

// TakeForCommit atomically claims the submission for the commit path.
// The entry is gone from the store when this returns, so a second
// button press or a concurrent cancel can no longer touch it; whichever
// caller takes it owns the outcome.
func (m *Manager) TakeForCommit(ownerID int64) (*Pending, error) {
	wrongStage := false
	p, ok := m.store.Mutate(ownerID, func(p *Pending) bool {
		// Claimed too early (no emoji yet); leave the entry in place.
		// The check and the removal share one critical section, so this
		// never writes back an entry a concurrent cancel already cleared.
		if p.Stage != StageAwaitingPack {
			wrongStage = true
			return false
		}
		return true
	})
	if !ok {
		return nil, ErrNoPending
	}
	if wrongStage {
		return nil, ErrWrongStage
	}
	return p, nil
}

// Cancel clears the user's submission from any stage. Returns false
// when there was nothing to cancel.
func (m *Manager) Cancel(ownerID int64) bool {
	p, ok := m.store.Take(ownerID)
	if !ok {
		return false
	}
	log.Info().
		Str("submission_id", p.ID).
		Int64("owner_id", ownerID).
		Str("stage", p.Stage.String()).
		Msg("Submission cancelled")
	return true
}
