package workflow

import "strings"

// RoleType is the canonical reviewer category the engine works with. The
// underlying role table is free text maintained by admins, so external role
// rows are mapped onto this closed set by Classify.
type RoleType string

const (
	RoleUnknown     RoleType = ""
	RoleRsaEntry    RoleType = "rsa_entry"
	RoleRiskOfficer RoleType = "risk_officer"
	RoleKadiv       RoleType = "kadiv"
	RoleAdminGrc    RoleType = "admin_grc"
	RoleApprovalGrc RoleType = "approval_grc"
	RoleSuperadmin  RoleType = "superadmin"
)

// Valid reports whether t is one of the assignable reviewer categories.
func (t RoleType) Valid() bool {
	switch t {
	case RoleRsaEntry, RoleRiskOfficer, RoleKadiv, RoleAdminGrc, RoleApprovalGrc, RoleSuperadmin:
		return true
	}
	return false
}

// IsGrc reports whether t is one of the GRC division roles. GRC roles are
// always scoped to the "GR" org prefix.
func (t RoleType) IsGrc() bool {
	return t == RoleAdminGrc || t == RoleApprovalGrc
}

// RoleRow is one role assignment as stored in the external role table:
// a loosely-structured code plus a display name.
type RoleRow struct {
	RoleID int64  `json:"roleId"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

func (r RoleRow) matchText() string {
	return strings.ToLower(r.Code + " " + r.Name)
}

func containsAll(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

func matchesApprovalGrc(text string) bool {
	return containsAll(text, "approval", "grc") || containsAll(text, "approver", "grc")
}

func matchesAdminGrc(text string) bool {
	return containsAll(text, "admin", "grc")
}

func matchesKadiv(text string) bool {
	return strings.Contains(text, "kadiv") ||
		strings.Contains(text, "kepala divisi") ||
		strings.Contains(text, "division head")
}

// A role named e.g. "Risk Admin GRC" must classify as GRC, not as officer,
// so the officer match excludes rows that also carry GRC keywords.
func matchesRiskOfficer(text string) bool {
	if matchesApprovalGrc(text) || matchesAdminGrc(text) {
		return false
	}
	return strings.Contains(text, "risk officer") || containsAll(text, "risk", "officer")
}

func matchesRsaEntry(text string) bool {
	return containsAll(text, "rsa", "entry")
}

// classifiers are tested in this fixed order. The ordering is load-bearing:
// more specific, higher-authority categories win when a row's text matches
// several patterns.
var classifiers = []struct {
	roleType RoleType
	match    func(string) bool
}{
	{RoleApprovalGrc, matchesApprovalGrc},
	{RoleAdminGrc, matchesAdminGrc},
	{RoleKadiv, matchesKadiv},
	{RoleRiskOfficer, matchesRiskOfficer},
	{RoleRsaEntry, matchesRsaEntry},
}

// Classify maps a user's assigned role rows to a single RoleType. Categories
// are tried in priority order; within a category the first assigned row (in
// the user's original order) wins, and its RoleID is returned alongside.
// A user whose rows match nothing classifies as RoleUnknown with roleID 0.
func Classify(rows []RoleRow) (RoleType, int64) {
	for _, c := range classifiers {
		for _, row := range rows {
			if c.match(row.matchText()) {
				return c.roleType, row.RoleID
			}
		}
	}
	return RoleUnknown, 0
}
