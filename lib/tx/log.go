package tx

import "go.uber.org/zap"

var log = zap.NewNop()

// UseLogger sets the logger used for verification traces.
func UseLogger(logger *zap.Logger) {
	log = logger
}
