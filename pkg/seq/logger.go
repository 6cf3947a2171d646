package seq

import "go.uber.org/zap"

var sourceLog = zap.NewNop()
var pumpLog = zap.NewNop()

func EnableDebugLogging(l *zap.Logger) {
	sourceLog = l
	pumpLog = l
}
