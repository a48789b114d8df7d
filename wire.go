//go:build wireinject

package main

import (
	"github.com/google/wire"

	"rscreport/ioc"
	"rscreport/pkg/server"
)

func InitApp() (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.InitConfig,
		ioc.InitLogger,
		ioc.InitAppService,
		ioc.InitReportHandler,
		ioc.InitGinEngine,
		ioc.InitScheduler,
		server.NewHTTPServer,
	))
}
