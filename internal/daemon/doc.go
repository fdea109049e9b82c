// Package daemon wires the conversion service together: the jobs store, the
// staging area, the dispatcher pool, and the HTTP API, guarded by a lock file
// so only one instance runs per data directory.
package daemon
