// Package bootstrap runs a service through its lifecycle: components are
// started in registration order, configuration callbacks wire the business
// layer, the process waits for SIGINT or SIGTERM, and components are stopped
// in reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(telemetry)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    return a.RegisterComponent(server.NewComponent(srv))
//	})
//	err = app.Run(ctx)
package bootstrap
