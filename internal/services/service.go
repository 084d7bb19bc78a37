package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/store"
)

// ErrNotFound is returned when an action references an id that no longer exists.
var ErrNotFound = errors.New("not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Service runs the user-facing actions against one store.
type Service struct {
	m      *store.Manager
	logger *log.Logger
}

func NewService(m *store.Manager, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default(log.ComponentApp)
	}
	return &Service{m: m, logger: logger.WithComponent(log.ComponentActions)}
}

// Manager exposes the underlying store owner.
func (s *Service) Manager() *store.Manager { return s.m }

func (s *Service) now() time.Time { return s.m.Now()() }

func (s *Service) nowISO() string { return core.Timestamp(s.now()) }

// update wraps store.Manager.Update with action logging.
func (s *Service) update(ctx context.Context, action string, fn func(*core.Store) error) (core.Store, error) {
	saved, err := s.m.Update(ctx, fn)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !isValidation(err) {
			s.logger.ErrorContext(ctx, "Action failed", log.FieldAction, action, log.FieldError, err)
		}
		return core.Store{}, err
	}
	s.logger.DebugContext(ctx, "Action applied", log.FieldAction, action, log.FieldUpdatedAt, saved.UpdatedAt)
	return saved, nil
}

// ValidationError marks user input that was rejected before touching the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Err: err}
}

func isValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsValidation reports whether err is a rejected user input.
func IsValidation(err error) bool { return isValidation(err) }

// appendWin records a win on s. ts comes from the action clock.
func (s *Service) appendWin(st *core.Store, winType, label string, delta float64, meta map[string]any) {
	if winType == "" {
		winType = core.WinOther
	}
	st.Wins.Events = core.AppendWin(st.Wins.Events, core.WinEvent{
		ID:    s.m.NewID(),
		TS:    s.now().UnixMilli(),
		Type:  winType,
		Label: label,
		Delta: delta,
		Meta:  meta,
	})
}
