package platform

import "context"

// MediaStore persists uploaded team logos and resolves a serving URL.
type MediaStore interface {
	StoreLogo(ctx context.Context, teamTag string, attachment *Attachment) (url string, err error)
}
