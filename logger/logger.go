package logger

import (
	"go.uber.org/zap"
)

var L *zap.Logger = zap.NewNop()

// Init 按运行模式初始化全局 logger
func Init(mode string) {
	var (
		l   *zap.Logger
		err error
	)
	if mode == "release" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	L = l
}

func Sync() {
	_ = L.Sync()
}
