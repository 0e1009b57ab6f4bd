package platform

import "context"

// Notifier delivers a direct one-to-one message to an identity, outside any
// session scope. Implementations swallow unreachable targets (closed DMs);
// callers ignore the returned error everywhere a notification is
// best-effort, which is every call site in the workflow layer.
type Notifier interface {
	Notify(ctx context.Context, discordID string, message string) error
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) error { return nil }
