/**
 * @description
 * Snapshot persistence for in-progress onboarding attempts. A single durable
 * key-value slot per user holds the serialized aggregate, the step index and
 * a save timestamp. Snapshots older than the validity window are treated as
 * absent so a reload never resurrects a week-old abandoned attempt.
 *
 * Persistence is deliberately forgiving: a corrupt or unreadable snapshot
 * falls open to a fresh flow, and a failed save is swallowed so navigation
 * is never interrupted by the storage layer.
 */
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// SnapshotTTL is the validity window for a persisted snapshot. Anything
// older is erased and the flow restarts from scratch.
const SnapshotTTL = 24 * time.Hour

// ErrSlotEmpty is returned by KVStore implementations when no value is
// stored under the requested key.
var ErrSlotEmpty = errors.New("progress slot is empty")

// KVStore is the durable slot behind progress persistence. Implementations
// are expected to be cheap per operation; each persistence call uses the
// store exactly once.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// Snapshot is the persisted serialization of one onboarding attempt.
type Snapshot struct {
	Answers   json.RawMessage `json:"answers"`
	StepIndex int             `json:"step_index"`
	SavedAt   time.Time       `json:"saved_at"`
}

// Progress persists and restores Flow snapshots through a KVStore.
type Progress struct {
	kv  KVStore
	ttl time.Duration
	now func() time.Time
}

// NewProgress creates a Progress over the given store with the standard
// validity window.
func NewProgress(kv KVStore) *Progress {
	return &Progress{kv: kv, ttl: SnapshotTTL, now: time.Now}
}

func progressKey(userID string) string {
	return "onboarding:progress:" + userID
}

// Load restores the user's flow from the persisted snapshot. It returns a
// fresh flow when the slot is empty, the snapshot is older than the validity
// window, or the stored value cannot be parsed. Stale and corrupt entries
// are erased on the way out.
func (p *Progress) Load(ctx context.Context, userID string) *Flow {
	raw, err := p.kv.Get(ctx, progressKey(userID))
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			log.Printf("progress load for user %s failed, starting fresh: %v", userID, err)
		}
		return &Flow{}
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("progress snapshot for user %s is corrupt, discarding: %v", userID, err)
		p.Clear(ctx, userID)
		return &Flow{}
	}

	if p.now().Sub(snap.SavedAt) >= p.ttl {
		p.Clear(ctx, userID)
		return &Flow{}
	}

	var f Flow
	if err := json.Unmarshal(snap.Answers, &f.Answers); err != nil {
		log.Printf("progress answers for user %s are corrupt, discarding: %v", userID, err)
		p.Clear(ctx, userID)
		return &Flow{}
	}

	// Clamp against the restored role's branch in case the stored index
	// predates a role reset.
	f.StepIndex = snap.StepIndex
	f.GoTo(f.StepIndex)
	return &f
}

// Save writes the flow and its step index with a fresh timestamp. Failures
// are logged and swallowed; the flow keeps going as if persistence were
// absent.
func (p *Progress) Save(ctx context.Context, userID string, f *Flow) {
	answers, err := json.Marshal(f.Answers)
	if err != nil {
		log.Printf("progress save for user %s failed to marshal answers: %v", userID, err)
		return
	}
	snap := Snapshot{Answers: answers, StepIndex: f.StepIndex, SavedAt: p.now()}
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("progress save for user %s failed to marshal snapshot: %v", userID, err)
		return
	}
	if err := p.kv.Set(ctx, progressKey(userID), string(raw), p.ttl); err != nil {
		log.Printf("progress save for user %s failed, continuing without persistence: %v", userID, err)
	}
}

// Clear removes the user's persisted snapshot. Called after a successful
// submission or an explicit reset; failures are swallowed.
func (p *Progress) Clear(ctx context.Context, userID string) {
	if err := p.kv.Remove(ctx, progressKey(userID)); err != nil {
		log.Printf("progress clear for user %s failed: %v", userID, err)
	}
}
