// Package jobs persists conversion jobs in SQLite and owns the job lifecycle
// (pending, processing, completed, failed). Status transitions are forward
// only and terminal writes never overwrite each other; startup recovery fails
// jobs a previous daemon left mid-processing instead of re-running them.
package jobs
