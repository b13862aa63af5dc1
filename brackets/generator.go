package brackets

import (
	"context"
)

type GenerateBracketParams struct {
	Countries []string
}

// BracketGenerator produces the opening round of a knockout bracket.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
