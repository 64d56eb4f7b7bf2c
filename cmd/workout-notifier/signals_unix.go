//go:build !windows

package main

import (
	"os"
	"syscall"
)

// dispatchSignals trigger a manual run of the schedule daemon.
var dispatchSignals = []os.Signal{syscall.SIGUSR1}
