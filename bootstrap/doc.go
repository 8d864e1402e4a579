// Package bootstrap runs the maple command as a finite task with
// start and stop hooks.
//
// SIGINT and SIGTERM cancel the task's context, which terminates the
// running tools; the stop hooks then close the run log and flush the
// telemetry exporters, whatever way the task ended.
//
//	app := bootstrap.NewApp("maple", version.Get().String())
//	app.OnStop(closeRunLog, shutdownTelemetry)
//	if err := app.RunTask(ctx, run); err != nil {
//	    os.Exit(1)
//	}
package bootstrap
