package smf

import "go.uber.org/zap"

var recorderLog = zap.NewNop()
var writerLog = zap.NewNop()

func EnableDebugLogging(l *zap.Logger) {
	recorderLog = l
	writerLog = l
}
