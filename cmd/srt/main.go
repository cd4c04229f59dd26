package main

import (
	"StudentRequests/internal/bootstrap"
	pkg "StudentRequests/pkg/routes"
	_ "time/tzdata"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.WithZapEvents,
		pkg.EchoModules,
	)

	app.Run()
}
