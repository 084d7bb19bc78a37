// Package cloud mirrors the store document to one remote document per user.
// Sync is whole-document: the newer side wins and arrays are never merged.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ConflictWindow is how close the two updatedAt stamps must be for a sync to
// be flagged as a possible conflict.
const ConflictWindow = 5 * time.Minute

var (
	ErrDisabled = errors.New("cloud sync is not enabled")
	ErrNoUser   = errors.New("cloud sync has no user id")
)

// Document is the remote copy. UpdatedAt is the store's own stamp;
// ServerUpdatedAt is set by the remote on every push. Both are epoch millis.
type Document struct {
	Store           json.RawMessage `json:"store"`
	UpdatedAt       int64           `json:"updatedAt"`
	ServerUpdatedAt int64           `json:"serverUpdatedAt,omitempty"`
}

// UnmarshalJSON accepts "state" as an alias of "store".
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw struct {
		Store           json.RawMessage `json:"store"`
		State           json.RawMessage `json:"state"`
		UpdatedAt       int64           `json:"updatedAt"`
		ServerUpdatedAt int64           `json:"serverUpdatedAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Store = raw.Store
	if len(d.Store) == 0 || string(d.Store) == "null" {
		d.Store = raw.State
	}
	d.UpdatedAt = raw.UpdatedAt
	d.ServerUpdatedAt = raw.ServerUpdatedAt
	return nil
}

// Remote stores one Document per user id.
type Remote interface {
	// Pull returns nil, nil when the user has no remote document yet.
	Pull(ctx context.Context, uid string) (*Document, error)
	Push(ctx context.Context, uid string, doc Document) error
}

type Action string

const (
	ActionPush Action = "push"
	ActionPull Action = "pull"
	// ActionNone: both sides hold the same revision.
	ActionNone Action = "none"
)

// Decision is the outcome of comparing local and remote stamps.
type Decision struct {
	Action   Action `json:"action"`
	Conflict bool   `json:"conflict"`
}

// Decide picks the sync direction. A missing remote is pushed, a strictly
// newer remote is pulled, an equal stamp needs nothing and an older remote is
// overwritten. Conflict is only a
// flag: both sides changed within ConflictWindow of each other.
func Decide(localUpdatedAt int64, remote *Document) Decision {
	if remote == nil {
		return Decision{Action: ActionPush}
	}
	diff := remote.UpdatedAt - localUpdatedAt
	if diff < 0 {
		diff = -diff
	}
	d := Decision{
		Action:   ActionPush,
		Conflict: diff != 0 && diff < ConflictWindow.Milliseconds(),
	}
	switch {
	case remote.UpdatedAt > localUpdatedAt:
		d.Action = ActionPull
	case remote.UpdatedAt == localUpdatedAt:
		d.Action = ActionNone
	}
	return d
}
