// Package app wires the Finora HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from environment and an optional YAML file
//	2. Initialize logging and OpenTelemetry (Prometheus registry per app)
//	3. Build the file catalog over a local directory or a static base URL
//	4. Create the dataset and health services
//	5. Set up HTTP handlers and middleware
//	6. Start the HTTP server and probe the catalog once
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run returns after SIGINT or SIGTERM once active requests are completed and
// the telemetry providers are flushed.
//
// The app does not call os.Exit() directly, allowing the main function to
// control the exit process.
package app
