package http

import "go.uber.org/zap"

func zapNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
