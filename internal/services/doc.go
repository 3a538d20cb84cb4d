// Package services implements the business logic layer between the HTTP
// handlers and the catalog, parser and exporter packages.
//
// # DatasetService
//
// DatasetService runs the viewer pipeline for one request:
//
//	catalog.Resolve → catalog.Fetch → dataprocessing.ParseBytes
//	    → dataprocessing.BuildView / MasterAnalyzer.Analyze
//	    → exporter.Write (downloads only)
//
// Each call loads its file afresh. Filter state is owned by the caller and
// passed in whole on every call.
//
// Errors carry the message a user should see. Catalog fetch failures come
// back as NETWORK AppErrors and unreadable files as PARSING AppErrors, both
// with config.ErrMsgLoadFailed, except an empty file which uses
// config.ErrMsgNoRows.
//
// # HealthService
//
// HealthService answers the health, readiness, liveness and version
// endpoints. Readiness probes every catalog file under config.ProbeTimeout.
package services
