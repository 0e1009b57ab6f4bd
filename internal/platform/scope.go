package platform

import "context"

// ScopeManager creates and tears down the ephemeral private conversation
// scopes (threads) that workflow sessions run in.
type ScopeManager interface {
	// OpenScope creates a private scope visible to the initiating user.
	OpenScope(ctx context.Context, userID string, title string) (scopeID string, err error)

	// AdmitUsers lets additional identities see and answer inside the
	// scope. Used to bring approvers into a handshake.
	AdmitUsers(ctx context.Context, scopeID string, userIDs []string) error

	// CloseScope destroys the scope. Idempotent.
	CloseScope(ctx context.Context, scopeID string) error
}
