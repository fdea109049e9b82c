// Package executor runs individual conversion jobs: it transitions the job to
// processing, invokes the converter, finalizes the artifact under its
// reserved name, and records exactly one terminal status.
package executor
