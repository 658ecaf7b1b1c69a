package rewriter

import "context"

// NoOp returns the draft unchanged. Used when no AI provider is configured.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Rewrite(_ context.Context, _, draft string) (string, error) {
	return draft, nil
}
