//go:build windows

package main

import "os"

var dispatchSignals []os.Signal
