package platform

import (
	"context"
	"errors"
	"time"
)

// ErrPromptTimeout is returned by any prompt call whose response window
// elapsed without an answer from an authorized responder.
var ErrPromptTimeout = errors.New("prompt timed out")

// Choice is one selectable option in a one-of-N prompt.
type Choice struct {
	ID    string
	Label string
}

// FieldSpec bounds a free-text capture.
type FieldSpec struct {
	Name   string
	MinLen int
	MaxLen int
}

// Attachment is a file received in a session scope.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Decision is the outcome of a confirm prompt.
type Decision int

const (
	Declined Decision = iota
	Accepted
)

// ChoiceResponse reports which option was picked and by whom.
type ChoiceResponse struct {
	ResponderID string
	OptionID    string
}

// TextResponse reports a free-text answer.
type TextResponse struct {
	ResponderID string
	Value       string
}

// ConfirmResponse reports an accept/decline answer.
type ConfirmResponse struct {
	ResponderID string
	Decision    Decision
}

// PromptSurface abstracts the chat platform's interactive primitives
// (dropdowns, modals, confirm buttons). Every call is addressed to one
// scope and restricted to the listed responders; the gateway rejects
// answers from anyone else and keeps the prompt open, so a returned
// response always comes from an authorized responder. Exactly one response
// resolves each prompt instance.
type PromptSurface interface {
	PresentChoice(ctx context.Context, scopeID string, responders []string, prompt string, options []Choice) (*ChoiceResponse, error)
	PresentFreeText(ctx context.Context, scopeID string, responders []string, prompt string, field FieldSpec) (*TextResponse, error)
	PresentConfirm(ctx context.Context, scopeID string, responders []string, prompt string) (*ConfirmResponse, error)
	AwaitAttachment(ctx context.Context, scopeID string, responder string, timeout time.Duration) (*Attachment, error)

	// Post drops a plain message into the scope with no response expected.
	Post(ctx context.Context, scopeID string, message string) error
}
