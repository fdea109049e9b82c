package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := statusSet[status]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

// Kind identifies the direction of a conversion.
type Kind string

const (
	KindPDFToWord Kind = "pdf_to_word"
	KindWordToPDF Kind = "word_to_pdf"
)

// ParseKind validates a raw conversion kind string.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.TrimSpace(strings.ToLower(raw)))
	switch kind {
	case KindPDFToWord, KindWordToPDF:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown conversion kind %q", raw)
	}
}

// TargetFormat returns the LibreOffice output format for the kind.
func (k Kind) TargetFormat() string {
	switch k {
	case KindPDFToWord:
		return "docx"
	case KindWordToPDF:
		return "pdf"
	default:
		return ""
	}
}

// AllowedExtensions lists the upload extensions accepted for the kind,
// lowercase without the leading dot.
func (k Kind) AllowedExtensions() []string {
	switch k {
	case KindPDFToWord:
		return []string{"pdf"}
	case KindWordToPDF:
		return []string{"docx", "doc"}
	default:
		return nil
	}
}

// RestartStopReason is the error message stamped on jobs found mid-processing
// after a daemon restart.
const RestartStopReason = "Conversion interrupted by service restart"

// Job represents a conversion job persisted in SQLite.
type Job struct {
	ID                int64
	OriginalFilename  string // generated staged name, never the client's
	ConvertedFilename string
	Kind              Kind
	Status            Status
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
