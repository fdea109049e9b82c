// Package httpapi exposes the conversion service over HTTP: upload intake,
// job status and download endpoints, a recent-conversions listing, and a
// health probe. Responses keep stable field names and error strings for
// existing clients.
package httpapi
