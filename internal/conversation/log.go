package conversation

import (
	"context"

	"docassist/internal/domain/ragmodel"
)

// Log is a session's append-only record of question/answer turns. The
// pipeline appends exactly one turn per successful answer; a failed answer
// appends nothing, so a retry starts from the same history.
//
// No concurrent-writer protection is promised beyond what each
// implementation needs internally: the session serializes its own queries.
type Log interface {
	Append(ctx context.Context, turn ragmodel.Turn) error
	Turns(ctx context.Context) ([]ragmodel.Turn, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Window returns the trailing n turns in chronological order. This is what
// gets folded back into prompts; feeding the whole log back forever is an
// unbounded-cost pattern.
func Window(turns []ragmodel.Turn, n int) []ragmodel.Turn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	if n >= len(turns) {
		return turns
	}
	return turns[len(turns)-n:]
}
