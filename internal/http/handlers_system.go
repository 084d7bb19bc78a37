package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/middleware/ratelimit"
	"lifeadmin/internal/middleware/security"
	"lifeadmin/internal/middleware/trace"
	"lifeadmin/internal/store"
	"lifeadmin/internal/vault"
)

// HeaderPassphrase carries the vault passphrase for sealed exports and imports.
const HeaderPassphrase = "X-Vault-Passphrase"

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
		return
	}
	ok(w, map[string]string{"status": "ready"})
}

type metricsResponse struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
	Cache     map[string]int64          `json:"cache"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	hits, misses := s.views.Stats()
	ok(w, metricsResponse{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
		Cache: map[string]int64{
			"hits":   hits,
			"misses": misses,
			"size":   int64(s.views.Size()),
		},
	})
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Header("ETag", strconv.Quote(s.store.Fingerprint())).Body(st).Write(w)
}

type changesResponse struct {
	Version     uint64 `json:"version"`
	Changed     bool   `json:"changed"`
	Fingerprint string `json:"fingerprint"`
}

// handleChanges long-polls for store changes. A client passes the version it
// last saw as ?since=; any other version returns at once, otherwise the
// request waits for the next change or the poll timeout.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	version, wait := s.changes.current()
	since, err := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)
	if err != nil || since != version {
		ok(w, changesResponse{Version: version, Changed: err == nil, Fingerprint: s.store.Fingerprint()})
		return
	}

	timer := time.NewTimer(s.longPoll)
	defer timer.Stop()
	select {
	case <-wait:
	case <-timer.C:
	case <-r.Context().Done():
		return
	}
	version, _ = s.changes.current()
	ok(w, changesResponse{Version: version, Changed: version > since, Fingerprint: s.store.Fingerprint()})
}

// handleExport downloads the store, wrapped in an envelope with ?envelope=1
// and sealed when a passphrase header is present.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Export(r.Context(), queryFlag(r.URL.Query(), "envelope"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := "lifeadmin-" + core.TodayISO(s.now())
	if pass := r.Header.Get(HeaderPassphrase); pass != "" {
		if data, err = vault.Seal(data, pass); err != nil {
			s.writeError(w, r, err)
			return
		}
		name += ".sealed"
	}
	NewJSONResponse().
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name)).
		Raw(data).
		Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readRaw(w, r, maxImportBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if vault.IsSealed(data) {
		if data, err = vault.Open(data, r.Header.Get(HeaderPassphrase)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	st, err := s.store.Import(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Store imported",
		log.FieldOperation, log.OpImport, log.FieldUpdatedAt, st.UpdatedAt)
	ok(w, map[string]any{"ok": true, "updatedAt": st.UpdatedAt})
}

type backupSummary struct {
	ID     string `json:"id"`
	TS     int64  `json:"ts"`
	Reason string `json:"reason"`
}

func summarize(b store.Backup) backupSummary {
	return backupSummary{ID: b.ID, TS: b.TS, Reason: b.Reason}
}

func (s *Server) handleBackups(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Backups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backupSummary, 0, len(list))
	for _, b := range list {
		out = append(out, summarize(b))
	}
	ok(w, map[string]any{"backups": out})
}

func (s *Server) handleAddBackup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	reason := sanitizeInput(body.Reason)
	if reason == "" {
		reason = store.ReasonManual
	}
	b, err := s.store.AddBackup(r.Context(), reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, summarize(b))
}

// restoreSafety defaults to keeping a pre-restore backup; ?safety=0 skips it.
func restoreSafety(r *http.Request) bool {
	b := queryBool(r.URL.Query(), "safety")
	return b == nil || *b
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.RestoreBackup(r.Context(), pathValue(r, "id"), restoreSafety(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, map[string]any{"ok": true, "updatedAt": st.UpdatedAt})
}

func (s *Server) handleRestoreLatest(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.RestoreLatest(r.Context(), restoreSafety(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, map[string]any{"ok": true, "updatedAt": st.UpdatedAt})
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	rep, err := s.store.Check(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, rep)
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	rep, err := s.store.Repair(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, rep)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		ErrorResponse(http.StatusConflict, "cloud sync is not configured").Write(w)
		return
	}
	out, err := s.syncer.SyncNow(r.Context())
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusInternalServerError {
			err = &syncError{err: err}
		}
		s.writeError(w, r, err)
		return
	}
	ok(w, out)
}
