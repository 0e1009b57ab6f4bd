package constants

const (
	StatusAlreadyRegistered = "Player already registered"
)

// User-facing workflow messages. Every terminal state posts exactly one of
// these (or a formatted variant) before the session scope closes.
const (
	MsgBanned                = "You are banned from tournament registration. Contact an admin if you believe this is a mistake."
	MsgNotRegistered         = "You are not registered as a player yet. Use /register first, then try again."
	MsgAlreadyOnTeam         = "You already belong to a team. A player can hold only one team position at a time."
	MsgDuplicateSession      = "You already have an active registration thread. Finish or cancel it first."
	MsgDuplicateIGN          = "That IGN is already taken. Pick another one."
	MsgDuplicateTeamName     = "A team with that name already exists. Pick another name."
	MsgDuplicateTeamTag      = "That tag is already in use. Pick another tag."
	MsgNoCandidateTeams      = "No team is currently looking for this position. Teams are hidden when you already belong to them or the position is full."
	MsgApprovalTimeout       = "No team staff responded in time. The request has been withdrawn - feel free to try again later."
	MsgApprovalDeclined      = "The team declined your request."
	MsgNotAnApprover         = "Only the team captain or a manager can answer this request."
	MsgPositionFilled        = "That position was filled while your request was pending."
	MsgRegionMismatchDecline = "Registration cancelled. Nothing was saved."
	MsgInactivityWarning     = "Still there? This thread will close soon if there is no activity."
	MsgInactivityFinal       = "Last call - the thread closes in a moment unless you continue."
	MsgSessionExpired        = "This thread timed out and has been closed. Start over whenever you are ready."
	MsgCaptainCannotLeave    = "Captains cannot leave their team. Transfer captaincy first with /transfer-captainship."
	MsgCaptainCannotBeKicked = "The captain cannot be kicked. Transfer captaincy first."
	MsgDisbandConfirm        = "This permanently deletes the team and removes every member. There is no undo."
	MsgNotTeamStaff          = "Only the captain or a manager of a team can do this."
	MsgAdminOnly             = "This command requires tournament admin permissions."
)
