package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lifeadmin/internal/cache"
	"lifeadmin/internal/cloud"
	"lifeadmin/internal/groceries"
	"lifeadmin/internal/log"
	"lifeadmin/internal/middleware/ratelimit"
	"lifeadmin/internal/middleware/security"
	"lifeadmin/internal/middleware/trace"
	"lifeadmin/internal/services"
	"lifeadmin/internal/store"
)

const (
	viewCacheSize    = 256
	viewCacheTTL     = 5 * time.Minute
	defaultLongPoll  = 25 * time.Second
	shutdownDeadline = 10 * time.Second
)

// Syncer runs one cloud sync on demand.
type Syncer interface {
	SyncNow(ctx context.Context) (cloud.Outcome, error)
}

// Deps are the collaborators the server drives. Syncer and Caches may be nil.
type Deps struct {
	Store              *store.Manager
	Service            *services.Service
	Groceries          *groceries.Manager
	Syncer             Syncer
	Caches             *cache.Manager
	Logger             *log.Logger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	store     *store.Manager
	svc       *services.Service
	groceries *groceries.Manager
	syncer    Syncer
	logger    *log.Logger

	session *sessionState
	views   *cache.LRUCache[any]
	caches  *cache.Manager
	changes *changeFeed

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	longPoll     time.Duration
	unsubscribe  func()
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// It subscribes to the store so cached views are dropped and long-polls are
// released on every change.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	caches := d.Caches
	if caches == nil {
		caches = cache.NewManager(logger)
	}
	views := cache.NewLRUCache[any](viewCacheSize, viewCacheTTL)
	caches.Register(views)

	rlCfg := ratelimit.DefaultConfig()
	if d.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = d.RateLimitPerMinute
	}

	s := &Server{
		store:     d.Store,
		svc:       d.Service,
		groceries: d.Groceries,
		syncer:    d.Syncer,
		logger:    logger,
		session:   &sessionState{},
		views:     views,
		caches:    caches,
		changes:   newChangeFeed(),
		limiter:   ratelimit.NewLimiter(rlCfg),
		detector:  security.NewDetector(logger),
		longPoll:  defaultLongPoll,
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)
	s.unsubscribe = d.Store.Subscribe(s.Changed)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(s.detector.Middleware(headers.Middleware(limit(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Changed drops cached views and wakes long-polling clients. The store calls
// it on every save; the groceries manager is wired to it as well.
func (s *Server) Changed() {
	s.caches.Invalidate()
	s.changes.bump()
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/store", s.handleStore)
	mux.HandleFunc("GET /api/changes", s.handleChanges)

	mux.HandleFunc("GET /api/admin", s.handleAdminList)
	mux.HandleFunc("GET /api/admin/alerts", s.handleAdminAlerts)
	mux.HandleFunc("GET /api/admin/next", s.handleAdminNext)
	mux.HandleFunc("GET /api/admin/calm", s.handleCalm)
	mux.HandleFunc("POST /api/admin/calm", s.handleSetCalm)
	mux.HandleFunc("GET /api/admin/templates", s.handleTemplates)
	mux.HandleFunc("POST /api/admin/templates/{key}", s.handleAddFromTemplate)
	mux.HandleFunc("POST /api/admin/items", s.handleAddItem)
	mux.HandleFunc("PUT /api/admin/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /api/admin/items/{id}", s.handleDeleteItem)
	mux.HandleFunc("POST /api/admin/items/{id}/done", s.handleMarkDone)
	mux.HandleFunc("POST /api/admin/items/{id}/archive", s.handleArchive)
	mux.HandleFunc("GET /api/admin/items/{id}/nudge", s.handleNudge)

	mux.HandleFunc("GET /api/money", s.handleMoney)
	mux.HandleFunc("PUT /api/money/payday", s.handleSetPayday)
	mux.HandleFunc("POST /api/money/funds", s.handleAddFund)
	mux.HandleFunc("PUT /api/money/funds/{id}", s.handleUpdateFund)
	mux.HandleFunc("DELETE /api/money/funds/{id}", s.handleDeleteFund)
	mux.HandleFunc("POST /api/money/funds/{id}/contribute", s.handleContribute)
	mux.HandleFunc("POST /api/money/budgets", s.handleAddBudget)
	mux.HandleFunc("DELETE /api/money/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /api/money/txns", s.handleAddTxn)
	mux.HandleFunc("DELETE /api/money/txns/{id}", s.handleDeleteTxn)

	mux.HandleFunc("GET /api/home", s.handleHome)
	mux.HandleFunc("PUT /api/home/rooms/{room}/notes", s.handleRoomNotes)
	mux.HandleFunc("POST /api/home/rooms/{room}/items", s.handleAddRoomItem)
	mux.HandleFunc("PATCH /api/home/rooms/{room}/items/{id}", s.handleSetRoomItem)
	mux.HandleFunc("DELETE /api/home/rooms/{room}/items/{id}", s.handleDeleteRoomItem)

	mux.HandleFunc("GET /api/skills", s.handleSkills)
	mux.HandleFunc("POST /api/skills", s.handleAddSkill)
	mux.HandleFunc("PUT /api/skills/{category}/{id}/level", s.handleSkillLevel)
	mux.HandleFunc("DELETE /api/skills/{category}/{id}", s.handleDeleteSkill)

	mux.HandleFunc("GET /api/wins", s.handleWins)
	mux.HandleFunc("POST /api/wins", s.handleLogWin)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/dashboard/dismiss/{id}", s.handleDismiss)
	mux.HandleFunc("GET /api/settings", s.handleSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/groceries", s.handleGroceries)
	mux.HandleFunc("POST /api/groceries", s.handleAddGrocery)
	mux.HandleFunc("PUT /api/groceries/meta", s.handleGroceryMeta)
	mux.HandleFunc("POST /api/groceries/clear-bought", s.handleClearBought)
	mux.HandleFunc("POST /api/groceries/reset", s.handleResetGroceries)
	mux.HandleFunc("POST /api/groceries/{id}/toggle", s.handleToggleGrocery)
	mux.HandleFunc("POST /api/groceries/{id}/repeat", s.handleRepeatGrocery)
	mux.HandleFunc("DELETE /api/groceries/{id}", s.handleRemoveGrocery)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/backups", s.handleBackups)
	mux.HandleFunc("POST /api/backups", s.handleAddBackup)
	mux.HandleFunc("POST /api/backups/latest/restore", s.handleRestoreLatest)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.handleRestore)
	mux.HandleFunc("GET /api/integrity", s.handleIntegrity)
	mux.HandleFunc("POST /api/integrity/repair", s.handleRepair)
	mux.HandleFunc("POST /api/sync", s.handleSync)
}

// Run serves until ctx is cancelled, then shuts down gracefully. The rate
// limiter sweep runs alongside the listener.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.limiter.Run(gctx) })
	g.Go(func() error {
		s.logger.InfoContext(gctx, "HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown stops the listener and detaches from the store. Safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.changes.bump()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped", log.FieldOperation, log.OpShutdown)
	})
	return shutdownErr
}
