package workflow

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Identity is the authenticated caller as resolved by the auth middleware.
// Users carry two identity keys: the numeric user id and the NIK employee
// number; role rows may be keyed by either.
type Identity struct {
	UserID      int64  `json:"userId"`
	NIK         string `json:"nik"`
	DisplayName string `json:"displayName"`
	SessionID   string `json:"sessionId"`
}

// SessionKey is the key simulation overrides are stored under.
func (i Identity) SessionKey() string {
	if i.SessionID != "" {
		return i.SessionID
	}
	// No session claim: fall back to the user id, which limits a superadmin
	// to one concurrent simulation session.
	return "user:" + strconv.FormatInt(i.UserID, 10)
}

// Context is the resolved workflow context for one request. It is immutable
// once built and lives no longer than the request it was built for.
//
// Invariant: Impersonating is true only when IsRealSuperadmin is true and a
// non-superadmin simulated role is active, in which case
// IsEffectiveSuperadmin is false.
type Context struct {
	UserID                int64
	NIK                   string
	DisplayName           string
	IsRealSuperadmin      bool
	IsEffectiveSuperadmin bool
	Impersonating         bool
	RoleType              RoleType
	OrgPrefix             string
	RoleID                int64
}

// EffectiveRole returns the role used against the transition tables: the
// totally-permissive superadmin role for effective superadmins, otherwise the
// classified (or simulated) role type.
func (c *Context) EffectiveRole() RoleType {
	if c.IsEffectiveSuperadmin {
		return RoleSuperadmin
	}
	return c.RoleType
}

// SimulationState is the session-scoped override a verified superadmin may
// apply to preview the system as another role.
type SimulationState struct {
	RoleType  RoleType `json:"roleType"`
	OrgPrefix string   `json:"orgPrefix"`
}

// Normalized applies the store invariants: GRC roles are always scoped to the
// "GR" org prefix, and org prefixes are two uppercase letters.
func (s SimulationState) Normalized() SimulationState {
	s.OrgPrefix = NormalizeOrgPrefix(s.OrgPrefix)
	if s.RoleType.IsGrc() {
		s.OrgPrefix = "GR"
	}
	return s
}

// NormalizeOrgPrefix reduces an organization name or code to the 2-letter
// uppercased prefix used for visibility scoping. Empty input stays empty.
func NormalizeOrgPrefix(org string) string {
	org = strings.ToUpper(strings.TrimSpace(org))
	if len(org) > 2 {
		org = org[:2]
	}
	return org
}

// RoleDirectory resolves a user's assigned role rows from the external role
// table, by either identity key.
type RoleDirectory interface {
	RoleRowsForUser(ctx context.Context, userID int64) ([]RoleRow, error)
	RoleRowsForNIK(ctx context.Context, nik string) ([]RoleRow, error)
}

// OrgLookup resolves the organization prefix for a user. An empty string
// means unknown.
type OrgLookup interface {
	OrgPrefixForUser(ctx context.Context, userID int64, nik string) (string, error)
}

// SuperadminChecker resolves superadmin membership beyond the single fixed
// superadmin identity.
type SuperadminChecker interface {
	IsSuperadmin(ctx context.Context, userID int64) (bool, error)
}

// SimulationStore holds per-session simulation overrides. Only the resolver
// consults it, and only for real superadmins.
type SimulationStore interface {
	Get(ctx context.Context, sessionID string) (*SimulationState, error)
	Set(ctx context.Context, sessionID string, state SimulationState) error
	Clear(ctx context.Context, sessionID string) error
}

// Resolver builds workflow contexts from authenticated identities. A context
// is built fresh for every request, so a role revoked in the directory or a
// simulation change takes effect on the caller's next call; handlers memoize
// the result for the lifetime of one request only.
type Resolver struct {
	superadminUserID int64
	roles            RoleDirectory
	orgs             OrgLookup
	superadmins      SuperadminChecker
	store            SimulationStore
	logger           *logrus.Entry
}

// NewResolver creates a resolver. superadmins may be nil when only the fixed
// superadmin identity is in use.
func NewResolver(superadminUserID int64, roles RoleDirectory, orgs OrgLookup, superadmins SuperadminChecker, store SimulationStore, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{
		superadminUserID: superadminUserID,
		roles:            roles,
		orgs:             orgs,
		superadmins:      superadmins,
		store:            store,
		logger:           logger.WithField("component", "workflow_resolver"),
	}
}

// Resolve builds the workflow context for ident. Resolution never fails: any
// collaborator error degrades to an unclassified context that is denied all
// scoped actions.
func (r *Resolver) Resolve(ctx context.Context, ident Identity) *Context {
	return r.build(ctx, ident)
}

func (r *Resolver) build(ctx context.Context, ident Identity) *Context {
	wc := &Context{
		UserID:      ident.UserID,
		NIK:         ident.NIK,
		DisplayName: ident.DisplayName,
	}

	wc.IsRealSuperadmin = r.isRealSuperadmin(ctx, ident.UserID)
	if wc.IsRealSuperadmin {
		r.applySimulation(ctx, ident, wc)
		return wc
	}

	rows, err := r.roleRows(ctx, ident)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", ident.UserID).Warn("Role lookup failed, context degrades to unclassified")
		return wc
	}

	wc.RoleType, wc.RoleID = Classify(rows)
	if wc.RoleType == RoleUnknown {
		return wc
	}

	org, err := r.orgs.OrgPrefixForUser(ctx, ident.UserID, ident.NIK)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", ident.UserID).Warn("Org lookup failed, scope degrades to empty prefix")
		org = ""
	}
	wc.OrgPrefix = NormalizeOrgPrefix(org)
	return wc
}

func (r *Resolver) isRealSuperadmin(ctx context.Context, userID int64) bool {
	if userID != 0 && userID == r.superadminUserID {
		return true
	}
	if r.superadmins == nil {
		return false
	}
	ok, err := r.superadmins.IsSuperadmin(ctx, userID)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Warn("Superadmin membership check failed")
		return false
	}
	return ok
}

// applySimulation fills in the effective role for a real superadmin. No
// stored simulation, or a simulated Superadmin role, yields the plain
// superadmin context.
func (r *Resolver) applySimulation(ctx context.Context, ident Identity, wc *Context) {
	wc.IsEffectiveSuperadmin = true

	if r.store == nil {
		return
	}
	state, err := r.store.Get(ctx, ident.SessionKey())
	if err != nil {
		r.logger.WithError(err).Warn("Simulation store read failed, ignoring simulation")
		return
	}
	if state == nil || state.RoleType == RoleSuperadmin || state.RoleType == RoleUnknown {
		return
	}

	normalized := state.Normalized()
	wc.IsEffectiveSuperadmin = false
	wc.Impersonating = true
	wc.RoleType = normalized.RoleType
	wc.OrgPrefix = normalized.OrgPrefix
}

func (r *Resolver) roleRows(ctx context.Context, ident Identity) ([]RoleRow, error) {
	rows, err := r.roles.RoleRowsForUser(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && ident.NIK != "" {
		return r.roles.RoleRowsForNIK(ctx, ident.NIK)
	}
	return rows, nil
}
