package script

import "go.uber.org/zap"

var log = zap.NewNop()

// UseLogger sets the logger used to trace evaluation failures.
func UseLogger(logger *zap.Logger) {
	log = logger
}
