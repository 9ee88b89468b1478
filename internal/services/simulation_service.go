package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"risk-register-service/internal/workflow"
)

var ErrInvalidSimulationRole = errors.New("unknown simulation role")

// SimulationService manages the superadmin-only role simulation override.
// Workflow contexts are rebuilt per request, so a stored override takes
// effect on the superadmin's very next request.
type SimulationService struct {
	store  workflow.SimulationStore
	logger *logrus.Entry
}

// NewSimulationService creates a new SimulationService
func NewSimulationService(store workflow.SimulationStore, logger *logrus.Logger) *SimulationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &SimulationService{
		store:  store,
		logger: logger.WithField("component", "simulation"),
	}
}

// Current returns the active override for the caller's session, nil when
// none is set. Only real superadmins may inspect it.
func (s *SimulationService) Current(ctx context.Context, wctx *workflow.Context, ident workflow.Identity) (*workflow.SimulationState, error) {
	if !wctx.IsRealSuperadmin {
		return nil, workflow.ErrNotAuthorized
	}
	return s.store.Get(ctx, ident.SessionKey())
}

// Apply stores a simulation override for the caller's session. Selecting the
// superadmin role clears the override instead of storing it.
func (s *SimulationService) Apply(ctx context.Context, wctx *workflow.Context, ident workflow.Identity, state workflow.SimulationState) error {
	if !wctx.IsRealSuperadmin {
		return workflow.ErrNotAuthorized
	}
	if !state.RoleType.Valid() {
		return ErrInvalidSimulationRole
	}

	if state.RoleType == workflow.RoleSuperadmin {
		return s.Reset(ctx, wctx, ident)
	}

	if err := s.store.Set(ctx, ident.SessionKey(), state); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   ident.UserID,
		"role_type": state.RoleType,
	}).Info("Simulation override applied")
	return nil
}

// Reset clears the caller's simulation override.
func (s *SimulationService) Reset(ctx context.Context, wctx *workflow.Context, ident workflow.Identity) error {
	if !wctx.IsRealSuperadmin {
		return workflow.ErrNotAuthorized
	}
	if err := s.store.Clear(ctx, ident.SessionKey()); err != nil {
		return err
	}
	s.logger.WithField("user_id", ident.UserID).Info("Simulation override cleared")
	return nil
}
