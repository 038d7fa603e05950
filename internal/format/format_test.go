package format

import (
	"context"
	"strings"
	"testing"
)

func TestCommandFormat(t *testing.T) {
	// cat is an identity formatter, which is all the pipe plumbing needs.
	f := NewCommand([]string{"cat"})

	doc := "<page><p>hi</p>\n</page>\n"
	got, err := f.Format(context.Background(), doc)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != doc {
		t.Errorf("got %q, want %q", got, doc)
	}
}

func TestCommandFormatFailure(t *testing.T) {
	f := NewCommand([]string{"sh", "-c", "echo 'parse error' >&2; exit 1"})

	_, err := f.Format(context.Background(), "<broken")
	if err == nil {
		t.Fatal("Format succeeded, want error")
	}
	if !strings.Contains(err.Error(), "parse error") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestCommandMissingBinary(t *testing.T) {
	f := NewCommand([]string{"definitely-not-a-formatter-binary"})

	if _, err := f.Format(context.Background(), "<page/>"); err == nil {
		t.Fatal("Format succeeded with missing binary")
	}
}

func TestDefaultCommand(t *testing.T) {
	f := NewCommand(nil)
	if f.path != "xmllint" {
		t.Errorf("default path = %q, want xmllint", f.path)
	}
}
