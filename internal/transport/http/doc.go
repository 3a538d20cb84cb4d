// Package http implements the HTTP handlers of the viewer service. Handlers
// parse requests, call the dataset and health services, and render either a
// JSON envelope or an RFC 7807 problem.
//
// # Routes
//
//	GET  /api/files                                   catalog
//	GET  /api/files/{name}                            filtered table view
//	POST /api/files/{name}/view                       same, filters in the body
//	GET  /api/files/{name}/columns/{column}/values    column domain
//	GET  /api/files/{name}/export.{csv|xlsx}          download
//	GET  /api/master/summary                          master report
//	POST /api/master/summary                          same, filters in the body
//	GET  /api/master/summary/{id}/export.{csv|xlsx}   summary download
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	POST /api/log/client
//
// # Filters
//
// In query strings each filtered column is a repeated parameter:
//
//	?filter.country=UAE&filter.country=KSA
//
// A column given once with an empty value (?filter.country=) selects
// nothing. In JSON bodies filters are an object of arrays:
//
//	{"filters": {"country": ["UAE", "KSA"]}, "policy": "first_seen"}
//
// Columns not mentioned are unrestricted.
//
// # Responses
//
// Successful responses use the envelope
//
//	{"status": "success", "data": ...}
//
// Errors are problem documents carrying error_code and trace_id. A file
// missing from the catalog is 404 FILE_NOT_FOUND; a file that could not be
// fetched or parsed is 502 DATASET_LOAD_FAILED with the message shown to
// users ("Failed to load file" or "No rows found in file").
package http
