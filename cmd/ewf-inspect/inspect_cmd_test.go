package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/open-forensics/ewf-inspect/internal/inspect"
)

func testSummary() *inspect.EvidenceSummary {
	s := &inspect.EvidenceSummary{
		File:      "case.E01",
		SizeBytes: 4096,
	}
	s.EWF.Valid = true
	s.EWF.SectionCount = 3
	s.EWF.Metadata = map[string]string{"case_number": "CASE-1"}
	return s
}

func newOutCommand(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd
}

func TestWriteInspectionResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInspectionResult(newOutCommand(&buf), testSummary(), "text", false); err != nil {
		t.Fatalf("writeInspectionResult: %v", err)
	}
	if !strings.Contains(buf.String(), "case.E01") {
		t.Fatalf("text output missing file name:\n%s", buf.String())
	}
}

func TestWriteInspectionResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInspectionResult(newOutCommand(&buf), testSummary(), "json", false); err != nil {
		t.Fatalf("writeInspectionResult: %v", err)
	}
	if !strings.Contains(buf.String(), `"case_number":"CASE-1"`) {
		t.Fatalf("json output missing metadata:\n%s", buf.String())
	}
}

func TestWriteInspectionResult_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInspectionResult(newOutCommand(&buf), testSummary(), "json", true); err != nil {
		t.Fatalf("writeInspectionResult: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("expected indented json:\n%s", buf.String())
	}
}

func TestWriteInspectionResult_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInspectionResult(newOutCommand(&buf), testSummary(), "yaml", false); err != nil {
		t.Fatalf("writeInspectionResult: %v", err)
	}
	if !strings.Contains(buf.String(), "case_number: CASE-1") {
		t.Fatalf("yaml output missing metadata:\n%s", buf.String())
	}
}

func TestWriteInspectionResult_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInspectionResult(newOutCommand(&buf), testSummary(), "xml", false); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestReplaceUnderscores(t *testing.T) {
	if got := replaceUnderscores("verify_sig"); got != "verify-sig" {
		t.Fatalf("got %q", got)
	}
}
