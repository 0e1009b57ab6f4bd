package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrGatewayDetached is returned by the detached adapters for any call that
// needs a live chat connection.
var ErrGatewayDetached = errors.New("chat gateway not attached")

// DetachedPromptSurface is the prompt adapter used when the process runs
// without a connected chat gateway (API-only deployments and tests that
// never prompt). Interactive calls fail fast instead of hanging.
type DetachedPromptSurface struct{}

func (DetachedPromptSurface) PresentChoice(context.Context, string, []string, string, []Choice) (*ChoiceResponse, error) {
	return nil, ErrGatewayDetached
}

func (DetachedPromptSurface) PresentFreeText(context.Context, string, []string, string, FieldSpec) (*TextResponse, error) {
	return nil, ErrGatewayDetached
}

func (DetachedPromptSurface) PresentConfirm(context.Context, string, []string, string) (*ConfirmResponse, error) {
	return nil, ErrGatewayDetached
}

func (DetachedPromptSurface) AwaitAttachment(context.Context, string, string, time.Duration) (*Attachment, error) {
	return nil, ErrGatewayDetached
}

func (DetachedPromptSurface) Post(context.Context, string, string) error { return nil }

// LocalScopeManager mints scope ids without a backing thread. Admin HTTP
// paths and tests use it; no conversation ever happens inside the scope.
type LocalScopeManager struct{}

func (LocalScopeManager) OpenScope(_ context.Context, _ string, title string) (string, error) {
	return fmt.Sprintf("%s-%s", title, uuid.NewString()), nil
}

func (LocalScopeManager) AdmitUsers(context.Context, string, []string) error { return nil }

func (LocalScopeManager) CloseScope(context.Context, string) error { return nil }

// NopRoleAssigner ignores badge mirroring. Used when no gateway is
// attached; the badge sync worker replays missed state on reconnect.
type NopRoleAssigner struct{}

func (NopRoleAssigner) GrantRole(context.Context, string, string) error  { return nil }
func (NopRoleAssigner) RevokeRole(context.Context, string, string) error { return nil }
func (NopRoleAssigner) CreateTeamBadge(_ context.Context, teamName string) (string, error) {
	return "", ErrGatewayDetached
}
func (NopRoleAssigner) DeleteTeamBadge(context.Context, string) error { return nil }

// DetachedMediaStore rejects uploads; logo capture needs a live gateway.
type DetachedMediaStore struct{}

func (DetachedMediaStore) StoreLogo(context.Context, string, *Attachment) (string, error) {
	return "", ErrGatewayDetached
}
