package constants

// WorkflowKind identifies one guided multi-step flow. Each active session is
// bound to exactly one kind.
type WorkflowKind string

const (
	WorkflowPlayerRegister  WorkflowKind = "player_register"
	WorkflowTeamRegister    WorkflowKind = "team_register"
	WorkflowManagerRegister WorkflowKind = "manager_register"
	WorkflowCoachRegister   WorkflowKind = "coach_register"
	WorkflowInvite          WorkflowKind = "invite"
	WorkflowTransfer        WorkflowKind = "transfer_captainship"
	WorkflowKick            WorkflowKind = "kick"
	WorkflowLeave           WorkflowKind = "leave"
	WorkflowDisband         WorkflowKind = "disband"
)

func (k WorkflowKind) String() string { return string(k) }

// Input bounds for free-text team fields.
const (
	TeamNameMaxLen = 32
	TeamTagMinLen  = 2
	TeamTagMaxLen  = 5
	IGNMaxLen      = 24
)
