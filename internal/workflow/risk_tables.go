package workflow

import "sort"

// Risk register statuses. The lifecycle is four repeated review stages of
// four steps each (officer -> kadiv -> admin submit -> GRC approve), with 5
// reserved as the delete-request side status outside the ladder.
const (
	RiskStatusDraft         = 0
	RiskStatusDeleteRequest = 5
	RiskStatusFinal         = 17
)

// riskLadder is the full status ordering superadmins may walk directly.
// Status 5 is intentionally absent; it is reachable only through the delete
// sub-protocol.
var riskLadder = []int{0, 1, 2, 3, 4, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}

// riskApproveNext maps (role, current status) to the status an approval
// lands on. Absence means the role cannot approve at that status.
var riskApproveNext = map[RoleType]map[int]int{
	RoleRiskOfficer: {0: 1, 4: 6, 9: 10, 13: 14},
	RoleKadiv:       {1: 2, 6: 7, 10: 11, 14: 15},
	RoleAdminGrc:    {2: 3, 7: 8, 11: 12, 15: 16},
	RoleApprovalGrc: {3: 4, 8: 9, 12: 13, 16: 17},
	RoleSuperadmin:  ladderForward(riskLadder),
}

// riskRejectNext is the mirror of riskApproveNext: a role rejecting at a
// status it reviews sends the entity back one ladder step. Two boundaries are
// deliberately not symmetric: ApprovalGrc (and superadmin) rejecting the
// delete-request status 5 always lands on 2, and superadmin rejecting the
// final status 17 lands on 16.
var riskRejectNext = map[RoleType]map[int]int{
	RoleRiskOfficer: {4: 3, 9: 8, 13: 12},
	RoleKadiv:       {1: 0, 6: 4, 10: 9, 14: 13},
	RoleAdminGrc:    {2: 1, 7: 6, 11: 10, 15: 14},
	RoleApprovalGrc: {3: 2, 8: 7, 12: 11, 16: 15, 5: 2},
	RoleSuperadmin:  withEntry(ladderBackward(riskLadder), 5, 2),
}

func ladderForward(ladder []int) map[int]int {
	m := make(map[int]int, len(ladder)-1)
	for i := 0; i < len(ladder)-1; i++ {
		m[ladder[i]] = ladder[i+1]
	}
	return m
}

func ladderBackward(ladder []int) map[int]int {
	m := make(map[int]int, len(ladder)-1)
	for i := 1; i < len(ladder); i++ {
		m[ladder[i]] = ladder[i-1]
	}
	return m
}

func withEntry(m map[int]int, status, next int) map[int]int {
	m[status] = next
	return m
}

// RiskApproveNext returns the status an approval by role at status lands on.
func RiskApproveNext(role RoleType, status int) (int, bool) {
	next, ok := riskApproveNext[role][status]
	return next, ok
}

// RiskRejectNext returns the status a rejection by role at status lands on.
func RiskRejectNext(role RoleType, status int) (int, bool) {
	next, ok := riskRejectNext[role][status]
	return next, ok
}

// RiskActionableStatuses returns the statuses at which role has a pending
// decision: everything it can approve or reject, including the delete-request
// status for the roles that settle those.
func RiskActionableStatuses(role RoleType) []int {
	return actionable(riskApproveNext[role], riskRejectNext[role])
}

// RiskCanRequestDelete reports whether role may move status into the
// delete-request side status. Only AdminGrc (or a superadmin) may request,
// and only from status 2, so a destructive delete always needs a second
// authority to settle it.
func RiskCanRequestDelete(role RoleType, status int) bool {
	return status == 2 && (role == RoleAdminGrc || role == RoleSuperadmin)
}

// RiskCanApproveDelete reports whether role may settle a pending
// delete-request by hard-deleting the row.
func RiskCanApproveDelete(role RoleType, status int) bool {
	return status == RiskStatusDeleteRequest && (role == RoleApprovalGrc || role == RoleSuperadmin)
}

func actionable(approve, reject map[int]int) []int {
	seen := make(map[int]bool, len(approve)+len(reject))
	var statuses []int
	for s := range approve {
		if !seen[s] {
			seen[s] = true
			statuses = append(statuses, s)
		}
	}
	for s := range reject {
		if !seen[s] {
			seen[s] = true
			statuses = append(statuses, s)
		}
	}
	// Sorted so the IN clauses built from this stay stable across calls.
	sort.Ints(statuses)
	return statuses
}
