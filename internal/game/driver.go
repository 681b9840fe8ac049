package game

import "context"

// Driver supplies actions for one seat. Each time the session suspends for
// that seat's MAIN or BATTLE phase it invokes Act on a fresh goroutine; the
// driver inspects snapshots and submits requests until one of them ends the
// phase. A nil driver leaves the seat to external submitters, which is how
// connected players are wired in.
type Driver interface {
	Act(ctx context.Context, sess *Session, seat Seat, phase Phase)
}
