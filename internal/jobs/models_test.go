package jobs_test

import (
	"testing"

	"papermill/internal/jobs"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		raw     string
		want    jobs.Kind
		wantErr bool
	}{
		{"pdf_to_word", jobs.KindPDFToWord, false},
		{"word_to_pdf", jobs.KindWordToPDF, false},
		{" PDF_TO_WORD ", jobs.KindPDFToWord, false},
		{"", "", true},
		{"word_to_word", "", true},
	}
	for _, tc := range cases {
		kind, err := jobs.ParseKind(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tc.raw, err)
			continue
		}
		if kind != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.raw, kind, tc.want)
		}
	}
}

func TestKindTargetFormat(t *testing.T) {
	if got := jobs.KindPDFToWord.TargetFormat(); got != "docx" {
		t.Errorf("pdf_to_word target = %q, want docx", got)
	}
	if got := jobs.KindWordToPDF.TargetFormat(); got != "pdf" {
		t.Errorf("word_to_pdf target = %q, want pdf", got)
	}
}

func TestKindAllowedExtensions(t *testing.T) {
	if exts := jobs.KindPDFToWord.AllowedExtensions(); len(exts) != 1 || exts[0] != "pdf" {
		t.Errorf("pdf_to_word extensions = %v", exts)
	}
	exts := jobs.KindWordToPDF.AllowedExtensions()
	if len(exts) != 2 || exts[0] != "docx" || exts[1] != "doc" {
		t.Errorf("word_to_pdf extensions = %v", exts)
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "processing", "completed", "failed"} {
		if _, err := jobs.ParseStatus(raw); err != nil {
			t.Errorf("ParseStatus(%q): %v", raw, err)
		}
	}
	if _, err := jobs.ParseStatus("queued"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if jobs.StatusPending.IsTerminal() || jobs.StatusProcessing.IsTerminal() {
		t.Error("pending/processing must not be terminal")
	}
	if !jobs.StatusCompleted.IsTerminal() || !jobs.StatusFailed.IsTerminal() {
		t.Error("completed/failed must be terminal")
	}
}
