// Package dispatcher runs the bounded worker pool that processes conversion
// jobs asynchronously. Submissions return immediately; work that cannot be
// queued is failed rather than left pending forever.
package dispatcher
