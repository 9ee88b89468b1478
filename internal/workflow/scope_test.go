package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseScope_EffectiveSuperadmin(t *testing.T) {
	scope := BaseScope(&Context{IsEffectiveSuperadmin: true})
	assert.True(t, scope.All)
	assert.True(t, scope.Matches(999, "ZZ"))
}

func TestBaseScope_GrcSeesEverything(t *testing.T) {
	for _, role := range []RoleType{RoleAdminGrc, RoleApprovalGrc} {
		scope := BaseScope(&Context{RoleType: role, OrgPrefix: "GR"})
		assert.True(t, scope.All, "role %s", role)
	}
}

func TestBaseScope_RsaEntrySeesOwnRowsOnly(t *testing.T) {
	scope := BaseScope(&Context{UserID: 42, RoleType: RoleRsaEntry, OrgPrefix: "TR"})
	assert.False(t, scope.All)
	assert.NotNil(t, scope.CreatorUserID)
	assert.Equal(t, int64(42), *scope.CreatorUserID)

	assert.True(t, scope.Matches(42, "TR"))
	assert.False(t, scope.Matches(43, "TR"))
	// Division does not widen an entry clerk's scope.
	assert.False(t, scope.Matches(43, "XX"))
}

func TestBaseScope_DivisionRoles(t *testing.T) {
	for _, role := range []RoleType{RoleRiskOfficer, RoleKadiv} {
		scope := BaseScope(&Context{UserID: 7, RoleType: role, OrgPrefix: "TR"})
		assert.NotNil(t, scope.OrgPrefix, "role %s", role)
		assert.Equal(t, "TR", *scope.OrgPrefix)

		assert.True(t, scope.Matches(999, "TR"))
		assert.False(t, scope.Matches(7, "GR"))
	}
}

func TestBaseScope_DivisionRoleWithoutOrgSeesNothing(t *testing.T) {
	// An officer whose org lookup failed must not see other divisions' rows.
	scope := BaseScope(&Context{UserID: 7, RoleType: RoleRiskOfficer, OrgPrefix: ""})
	assert.True(t, scope.None)
	assert.False(t, scope.Matches(7, ""))
	assert.False(t, scope.Matches(7, "TR"))
}

func TestBaseScope_UnclassifiedSeesNothing(t *testing.T) {
	scope := BaseScope(&Context{UserID: 7, RoleType: RoleUnknown})
	assert.True(t, scope.None)
	assert.False(t, scope.Matches(7, "TR"))
}

func TestNormalizeOrgPrefix(t *testing.T) {
	assert.Equal(t, "TR", NormalizeOrgPrefix("TR - Treasury Division"))
	assert.Equal(t, "TR", NormalizeOrgPrefix("tr"))
	assert.Equal(t, "GR", NormalizeOrgPrefix("  grc "))
	assert.Equal(t, "", NormalizeOrgPrefix(""))
	assert.Equal(t, "", NormalizeOrgPrefix("   "))
}
