package middleware

import (
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// Middleware holds the status server's HTTP middleware
type Middleware struct {
	log *logger.Logger
}

// New creates a new Middleware instance
func New(log *logger.Logger) *Middleware {
	return &Middleware{
		log: log.WithComponent("http"),
	}
}
