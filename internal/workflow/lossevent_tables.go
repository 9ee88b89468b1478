package workflow

// Loss event statuses. The loss event lifecycle is a single review stage; it
// reuses the terminal block of the risk ladder so both domains report the
// same "final" status code.
const (
	LossStatusDraft           = 0
	LossStatusDeleteRequest   = 5
	LossStatusOfficerApproved = 14
	LossStatusKadivApproved   = 15
	LossStatusAdminSubmitted  = 16
	LossStatusFinal           = 17
)

var lossLadder = []int{0, 14, 15, 16, 17}

var lossApproveNext = map[RoleType]map[int]int{
	RoleRiskOfficer: {0: 14},
	RoleKadiv:       {14: 15},
	RoleAdminGrc:    {15: 16},
	RoleApprovalGrc: {16: 17},
	RoleSuperadmin:  ladderForward(lossLadder),
}

// Delete-request rejection lands back on 15, the status the request was made
// from, mirroring the risk domain's 5 -> 2 rule.
var lossRejectNext = map[RoleType]map[int]int{
	RoleKadiv:       {14: 0},
	RoleAdminGrc:    {15: 14},
	RoleApprovalGrc: {16: 15, 5: 15},
	RoleSuperadmin:  withEntry(ladderBackward(lossLadder), 5, 15),
}

// LossApproveNext returns the status an approval by role at status lands on.
func LossApproveNext(role RoleType, status int) (int, bool) {
	next, ok := lossApproveNext[role][status]
	return next, ok
}

// LossRejectNext returns the status a rejection by role at status lands on.
func LossRejectNext(role RoleType, status int) (int, bool) {
	next, ok := lossRejectNext[role][status]
	return next, ok
}

// LossActionableStatuses returns the statuses at which role has a pending
// decision in the loss event domain.
func LossActionableStatuses(role RoleType) []int {
	return actionable(lossApproveNext[role], lossRejectNext[role])
}

// LossCanRequestDelete reports whether role may request deletion; gated at
// the kadiv-approved status.
func LossCanRequestDelete(role RoleType, status int) bool {
	return status == LossStatusKadivApproved && (role == RoleAdminGrc || role == RoleSuperadmin)
}

// LossCanApproveDelete reports whether role may settle a pending
// delete-request by hard-deleting the row.
func LossCanApproveDelete(role RoleType, status int) bool {
	return status == LossStatusDeleteRequest && (role == RoleApprovalGrc || role == RoleSuperadmin)
}
