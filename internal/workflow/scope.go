package workflow

import "gorm.io/gorm"

// Scope is the row-visibility predicate derived from a workflow context. It
// is an explicit value rather than raw SQL so the authorization rules stay
// mechanically checkable; repositories apply it to their queries.
type Scope struct {
	All           bool
	None          bool
	CreatorUserID *int64
	OrgPrefix     *string
}

// BaseScope returns the visibility predicate for a context:
//
//	effective superadmin, AdminGrc, ApprovalGrc -> everything
//	RsaEntry                                    -> own rows only
//	RiskOfficer, Kadiv                          -> own division, nothing if the
//	                                               org prefix is unknown
//	unclassified                                -> nothing
func BaseScope(c *Context) Scope {
	if c.IsEffectiveSuperadmin {
		return Scope{All: true}
	}

	switch c.RoleType {
	case RoleAdminGrc, RoleApprovalGrc:
		return Scope{All: true}
	case RoleRsaEntry:
		creator := c.UserID
		return Scope{CreatorUserID: &creator}
	case RoleRiskOfficer, RoleKadiv:
		if c.OrgPrefix == "" {
			return Scope{None: true}
		}
		org := c.OrgPrefix
		return Scope{OrgPrefix: &org}
	default:
		return Scope{None: true}
	}
}

// Matches reports whether a row with the given creator and owning org falls
// inside the scope. This is the same predicate Apply expresses in SQL.
func (s Scope) Matches(creatorUserID int64, ownerOrgCode string) bool {
	switch {
	case s.All:
		return true
	case s.None:
		return false
	case s.CreatorUserID != nil:
		return creatorUserID == *s.CreatorUserID
	case s.OrgPrefix != nil:
		return ownerOrgCode == *s.OrgPrefix
	}
	return false
}

// Apply narrows db to the rows the scope permits. Entity tables share the
// creator_user_id and owner_org_code column names, so one scope serves both
// domains.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	switch {
	case s.All:
		return db
	case s.None:
		return db.Where("1 = 0")
	case s.CreatorUserID != nil:
		return db.Where("creator_user_id = ?", *s.CreatorUserID)
	case s.OrgPrefix != nil:
		return db.Where("owner_org_code = ?", *s.OrgPrefix)
	}
	return db.Where("1 = 0")
}
