// Package bootstrap runs a dataflow task inside a uniform process lifecycle.
//
// An App owns the typed task configuration, the logger and the registry of
// channel backends. RunTask starts the backends, runs the configure callbacks
// and the task, then stops everything in reverse order. SIGINT and SIGTERM
// cancel the task context.
//
//	app, err := bootstrap.NewApp(&taskFile)
//	app.RegisterComponent(storageComponent)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return runExecutor(ctx)
//	})
package bootstrap
