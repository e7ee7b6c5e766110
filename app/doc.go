// Package app assembles the scribe service: it loads Config, builds the
// component set in dependency order and mounts the HTTP handlers.
//
//	cfg, err := app.LoadConfig()
//	a, err := bootstrap.NewApp(cfg)
//	app.Register(a)
//	a.Run(ctx)
package app
