//go:build !unix

package daemon

import (
	"os"
	"os/signal"
)

// notifySignals wires interrupt to term; there is no portable rescan
// signal off unix, so rescan never fires.
func notifySignals(term, rescan chan<- os.Signal) {
	signal.Notify(term, os.Interrupt)
	_ = rescan
}
