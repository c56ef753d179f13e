package util

import (
	"runtime/debug"

	"go.uber.org/zap"
)

// SafeGo runs fn on a new goroutine. A panic is logged and swallowed so a
// background failure never takes the process down.
func SafeGo(logger *zap.Logger, name string, fn func()) {
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover logs a recovered panic. It must be called directly by defer.
func Recover(logger *zap.Logger, name string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered",
			zap.String("goroutine", name),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
	}
}
