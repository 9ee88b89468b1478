package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskApproveNext_StageBoundaries(t *testing.T) {
	cases := []struct {
		role   RoleType
		status int
		next   int
	}{
		{RoleRiskOfficer, 0, 1},
		{RoleRiskOfficer, 4, 6}, // stage 2 opens past the delete-request slot
		{RoleRiskOfficer, 9, 10},
		{RoleRiskOfficer, 13, 14},
		{RoleKadiv, 1, 2},
		{RoleKadiv, 14, 15},
		{RoleAdminGrc, 2, 3},
		{RoleAdminGrc, 15, 16},
		{RoleApprovalGrc, 3, 4},
		{RoleApprovalGrc, 16, 17},
	}
	for _, tc := range cases {
		next, ok := RiskApproveNext(tc.role, tc.status)
		assert.True(t, ok, "%s at %d", tc.role, tc.status)
		assert.Equal(t, tc.next, next, "%s at %d", tc.role, tc.status)
	}
}

func TestRiskApproveNext_DeniesOutsideOwnSlots(t *testing.T) {
	// Each role only decides its own slot in every stage.
	_, ok := RiskApproveNext(RoleKadiv, 0)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleRiskOfficer, 1)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleAdminGrc, 3)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleApprovalGrc, 17)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleRsaEntry, 0)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleUnknown, 0)
	assert.False(t, ok)
}

func TestRiskApproveNext_NeverLandsOnDeleteRequest(t *testing.T) {
	for _, role := range []RoleType{RoleRiskOfficer, RoleKadiv, RoleAdminGrc, RoleApprovalGrc, RoleSuperadmin} {
		for status := 0; status <= 17; status++ {
			if next, ok := RiskApproveNext(role, status); ok {
				assert.NotEqual(t, RiskStatusDeleteRequest, next, "%s at %d", role, status)
			}
		}
	}
}

func TestRiskApproveNext_SuperadminWalksWholeLadder(t *testing.T) {
	// Superadmin can advance from every non-terminal ladder status, skipping 5.
	current := 0
	steps := 0
	for current != RiskStatusFinal {
		next, ok := RiskApproveNext(RoleSuperadmin, current)
		assert.True(t, ok, "stuck at %d", current)
		assert.NotEqual(t, RiskStatusDeleteRequest, next)
		current = next
		steps++
	}
	assert.Equal(t, 16, steps)

	_, ok := RiskApproveNext(RoleSuperadmin, RiskStatusFinal)
	assert.False(t, ok)
	_, ok = RiskApproveNext(RoleSuperadmin, RiskStatusDeleteRequest)
	assert.False(t, ok)
}

func TestRiskRejectNext_MirrorsApprovals(t *testing.T) {
	cases := []struct {
		role   RoleType
		status int
		next   int
	}{
		{RoleKadiv, 1, 0},
		{RoleKadiv, 6, 4}, // stage boundary skips the delete-request slot
		{RoleKadiv, 10, 9},
		{RoleKadiv, 14, 13},
		{RoleAdminGrc, 2, 1},
		{RoleAdminGrc, 15, 14},
		{RoleApprovalGrc, 3, 2},
		{RoleApprovalGrc, 16, 15},
		{RoleRiskOfficer, 4, 3},
		{RoleRiskOfficer, 9, 8},
		{RoleRiskOfficer, 13, 12},
	}
	for _, tc := range cases {
		next, ok := RiskRejectNext(tc.role, tc.status)
		assert.True(t, ok, "%s at %d", tc.role, tc.status)
		assert.Equal(t, tc.next, next, "%s at %d", tc.role, tc.status)
	}
}

func TestRiskRejectNext_DeleteRequestReturnsToOrigin(t *testing.T) {
	// A rejected delete-request lands back on 2, where it was requested from.
	next, ok := RiskRejectNext(RoleApprovalGrc, RiskStatusDeleteRequest)
	assert.True(t, ok)
	assert.Equal(t, 2, next)

	next, ok = RiskRejectNext(RoleSuperadmin, RiskStatusDeleteRequest)
	assert.True(t, ok)
	assert.Equal(t, 2, next)

	// Nobody else may settle a delete-request.
	_, ok = RiskRejectNext(RoleAdminGrc, RiskStatusDeleteRequest)
	assert.False(t, ok)
	_, ok = RiskRejectNext(RoleKadiv, RiskStatusDeleteRequest)
	assert.False(t, ok)
}

func TestRiskRejectNext_SuperadminUnwindsFinal(t *testing.T) {
	next, ok := RiskRejectNext(RoleSuperadmin, RiskStatusFinal)
	assert.True(t, ok)
	assert.Equal(t, 16, next)

	// 6 backs onto 4 across the missing slot.
	next, ok = RiskRejectNext(RoleSuperadmin, 6)
	assert.True(t, ok)
	assert.Equal(t, 4, next)

	_, ok = RiskRejectNext(RoleSuperadmin, RiskStatusDraft)
	assert.False(t, ok)
}

func TestRiskActionableStatuses(t *testing.T) {
	assert.ElementsMatch(t, []int{0, 4, 9, 13}, RiskActionableStatuses(RoleRiskOfficer))
	assert.ElementsMatch(t, []int{1, 6, 10, 14}, RiskActionableStatuses(RoleKadiv))
	assert.ElementsMatch(t, []int{2, 7, 11, 15}, RiskActionableStatuses(RoleAdminGrc))
	assert.ElementsMatch(t, []int{3, 8, 12, 16, 5}, RiskActionableStatuses(RoleApprovalGrc))
	assert.Empty(t, RiskActionableStatuses(RoleRsaEntry))
	assert.Empty(t, RiskActionableStatuses(RoleUnknown))
}

func TestRiskDeleteSubProtocol(t *testing.T) {
	// Requesting is AdminGrc-only and only from status 2.
	assert.True(t, RiskCanRequestDelete(RoleAdminGrc, 2))
	assert.True(t, RiskCanRequestDelete(RoleSuperadmin, 2))
	assert.False(t, RiskCanRequestDelete(RoleAdminGrc, 3))
	assert.False(t, RiskCanRequestDelete(RoleApprovalGrc, 2))
	assert.False(t, RiskCanRequestDelete(RoleKadiv, 2))

	// Settling is ApprovalGrc-only, so the requester can never delete alone.
	assert.True(t, RiskCanApproveDelete(RoleApprovalGrc, RiskStatusDeleteRequest))
	assert.True(t, RiskCanApproveDelete(RoleSuperadmin, RiskStatusDeleteRequest))
	assert.False(t, RiskCanApproveDelete(RoleAdminGrc, RiskStatusDeleteRequest))
	assert.False(t, RiskCanApproveDelete(RoleApprovalGrc, 2))
}

func TestLossApproveNext(t *testing.T) {
	cases := []struct {
		role   RoleType
		status int
		next   int
	}{
		{RoleRiskOfficer, LossStatusDraft, LossStatusOfficerApproved},
		{RoleKadiv, LossStatusOfficerApproved, LossStatusKadivApproved},
		{RoleAdminGrc, LossStatusKadivApproved, LossStatusAdminSubmitted},
		{RoleApprovalGrc, LossStatusAdminSubmitted, LossStatusFinal},
	}
	for _, tc := range cases {
		next, ok := LossApproveNext(tc.role, tc.status)
		assert.True(t, ok, "%s at %d", tc.role, tc.status)
		assert.Equal(t, tc.next, next, "%s at %d", tc.role, tc.status)
	}

	_, ok := LossApproveNext(RoleRiskOfficer, LossStatusOfficerApproved)
	assert.False(t, ok)
	_, ok = LossApproveNext(RoleApprovalGrc, LossStatusFinal)
	assert.False(t, ok)
}

func TestLossRejectNext(t *testing.T) {
	next, ok := LossRejectNext(RoleKadiv, LossStatusOfficerApproved)
	assert.True(t, ok)
	assert.Equal(t, LossStatusDraft, next)

	next, ok = LossRejectNext(RoleAdminGrc, LossStatusKadivApproved)
	assert.True(t, ok)
	assert.Equal(t, LossStatusOfficerApproved, next)

	next, ok = LossRejectNext(RoleApprovalGrc, LossStatusAdminSubmitted)
	assert.True(t, ok)
	assert.Equal(t, LossStatusKadivApproved, next)

	// The officer has no rejection slots: draft is already the floor.
	assert.Empty(t, lossRejectNext[RoleRiskOfficer])
}

func TestLossRejectNext_DeleteRequestReturnsToKadivApproved(t *testing.T) {
	next, ok := LossRejectNext(RoleApprovalGrc, LossStatusDeleteRequest)
	assert.True(t, ok)
	assert.Equal(t, LossStatusKadivApproved, next)

	next, ok = LossRejectNext(RoleSuperadmin, LossStatusDeleteRequest)
	assert.True(t, ok)
	assert.Equal(t, LossStatusKadivApproved, next)
}

func TestLossDeleteSubProtocol(t *testing.T) {
	assert.True(t, LossCanRequestDelete(RoleAdminGrc, LossStatusKadivApproved))
	assert.True(t, LossCanRequestDelete(RoleSuperadmin, LossStatusKadivApproved))
	assert.False(t, LossCanRequestDelete(RoleAdminGrc, LossStatusAdminSubmitted))
	assert.False(t, LossCanRequestDelete(RoleApprovalGrc, LossStatusKadivApproved))

	assert.True(t, LossCanApproveDelete(RoleApprovalGrc, LossStatusDeleteRequest))
	assert.True(t, LossCanApproveDelete(RoleSuperadmin, LossStatusDeleteRequest))
	assert.False(t, LossCanApproveDelete(RoleAdminGrc, LossStatusDeleteRequest))
}

func TestLossActionableStatuses(t *testing.T) {
	assert.ElementsMatch(t, []int{0}, LossActionableStatuses(RoleRiskOfficer))
	assert.ElementsMatch(t, []int{14}, LossActionableStatuses(RoleKadiv))
	assert.ElementsMatch(t, []int{15}, LossActionableStatuses(RoleAdminGrc))
	assert.ElementsMatch(t, []int{16, 5}, LossActionableStatuses(RoleApprovalGrc))
}
