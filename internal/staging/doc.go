// Package staging owns the on-disk layout for uploads and conversion
// artifacts. Uploads are stored under UUID names, artifact names reuse the
// upload's UUID base with the target extension, and stale uploads can be
// swept after a configurable age.
package staging
