// Package bootstrap runs a binary's lifecycle: typed config, logger,
// component registry, hooks and signal handling.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponents(dbComponent, storageComponent, serverComponent)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run starts components in registration order, blocks until SIGINT, SIGTERM
// or context cancellation, then stops them in reverse order within the
// graceful timeout. RunTask does the same around a finite task.
package bootstrap
