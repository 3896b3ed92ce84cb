// Package errs defines the application's error taxonomy.
//
// Every failure the API can surface to a client is expressed as an
// *HTTPError carrying one of a small closed set of kinds (bad request,
// unauthenticated, forbidden, not found, conflict, unexpected). Errors
// marked operational are expected, user-facing conditions; everything
// else is treated as a defect whose detail is never disclosed outside
// development.
package errs
