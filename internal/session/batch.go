package session

import (
	"errors"
	"fmt"
)

// ErrNoIdentities is returned when a mutation batch contains no valid
// identity tokens. It is an input validation condition, reported to the
// operator as a status message and never written to the audit log.
var ErrNoIdentities = errors.New("no valid identities")

// BatchOutcome is the result of one per-identity mutation attempt.
type BatchOutcome struct {
	Identity string
	Op       string
	Err      error // nil on success
	Skipped  bool  // identity did not resolve, nothing attempted
}

// BatchResult reports the per-identity outcomes of one mutation batch.
// Partial success is expected and normal; a batch never fails as a whole
// short of a lost directory connection.
type BatchResult struct {
	Outcomes []BatchOutcome

	Succeeded int
	Failed    int
	Skipped   int
}

func (b *BatchResult) ok(identity, op string) {
	b.Outcomes = append(b.Outcomes, BatchOutcome{Identity: identity, Op: op})
	b.Succeeded++
}

func (b *BatchResult) fail(identity, op string, err error) {
	b.Outcomes = append(b.Outcomes, BatchOutcome{Identity: identity, Op: op, Err: err})
	b.Failed++
}

func (b *BatchResult) skip(identity string) {
	b.Outcomes = append(b.Outcomes, BatchOutcome{Identity: identity, Skipped: true})
	b.Skipped++
}

// Summary renders the one-line outcome for the console status line.
func (b *BatchResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", b.Succeeded, b.Failed, b.Skipped)
}
