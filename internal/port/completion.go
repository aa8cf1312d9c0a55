package port

import "context"

// CompletionRequest carries one prompt to the completion service:
// system instructions plus the user content they apply to. Model
// overrides the provider's default when set.
type CompletionRequest struct {
	System string
	User   string
	Model  string
}

// CompletionClient abstracts an external text-completion service. The
// returned string is the raw assistant text; callers own any parsing.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
