package store

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"lifeadmin/internal/log"
)

// MinWatchInterval is the shortest accepted polling period.
const MinWatchInterval = 100 * time.Millisecond

// Fingerprint is the FNV-1a 64-bit hash of b in hex.
func Fingerprint(b []byte) string {
	h := fnv.New64a()
	h.Write(b)
	return strconv.FormatUint(h.Sum64(), 16)
}

// Watcher polls one persisted key and calls onChange when its bytes change.
// It is how writes from other processes become visible.
type Watcher struct {
	p        Persistence
	key      string
	interval time.Duration
	onChange func(context.Context)
	logger   *log.Logger

	last   string
	primed bool
}

func NewWatcher(p Persistence, key string, interval time.Duration, onChange func(context.Context)) *Watcher {
	if interval < MinWatchInterval {
		interval = MinWatchInterval
	}
	return &Watcher{
		p:        p,
		key:      key,
		interval: interval,
		onChange: onChange,
		logger:   log.Default(log.ComponentStore),
	}
}

// Poll reads the key once. The first call only records the fingerprint.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	raw, ok, err := w.p.Get(ctx, w.key)
	if err != nil {
		return false, err
	}
	fp := ""
	if ok {
		fp = Fingerprint(raw)
	}
	changed := w.primed && fp != w.last
	w.last, w.primed = fp, true
	if changed && w.onChange != nil {
		w.onChange(ctx)
	}
	return changed, nil
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if _, err := w.Poll(ctx); err != nil {
		w.logger.WarnContext(ctx, "Store watch poll failed", log.FieldKey, w.key, log.FieldError, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.logger.WarnContext(ctx, "Store watch poll failed", log.FieldKey, w.key, log.FieldError, err)
			}
		}
	}
}
