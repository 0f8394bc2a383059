// Package app wires the AlumniPulse application: configuration loading,
// logging and telemetry initialization, the survey service layer, and the
// chi HTTP router with its middleware chain.
//
// The composition order is fixed: config, logger, paths, OpenTelemetry,
// question set, services, router, server. NewApplication fails fast on any
// step so a misconfigured deployment never starts serving.
//
// Routes:
//
//	/api/surveys   survey upload, filters, reports, export, conclusions
//	/api/health    health, readiness, liveness
//	/api/version   build information
//	/metrics       Prometheus scrape endpoint
//	/, /static     embedded web UI
package app
