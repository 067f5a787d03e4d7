//go:build unix

package daemon

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals wires the two termination signals to term and the manual
// rescan signal (SIGUSR1) to rescan.
func notifySignals(term, rescan chan<- os.Signal) {
	signal.Notify(term, os.Interrupt, syscall.SIGTERM)
	signal.Notify(rescan, syscall.SIGUSR1)
}
