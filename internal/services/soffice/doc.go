// Package soffice wraps headless LibreOffice invocations used for document
// conversions. The client runs the binary with a per-conversion deadline,
// kills the whole process group when the deadline lapses, and classifies
// failures via the shared services error markers.
package soffice
