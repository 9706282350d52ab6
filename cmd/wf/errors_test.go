package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/n8n-cli/wf/internal/apperr"
)

func TestRenderErrorIncludesHintWhenPresent(t *testing.T) {
	err := apperr.New(apperr.NotFound, "workflow not found").WithHint("check the id and try again")
	out := renderError(err)
	if !strings.Contains(out, "workflow not found") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "check the id and try again") {
		t.Fatalf("expected hint in output, got %q", out)
	}
}

func TestRenderErrorOmitsHintLineWhenAbsent(t *testing.T) {
	err := apperr.New(apperr.Internal, "boom")
	out := renderError(err)
	if strings.Contains(out, "hint:") {
		t.Fatalf("expected no hint line, got %q", out)
	}
}

func TestRenderErrorFallsBackForPlainErrors(t *testing.T) {
	out := renderError(errors.New("plain failure"))
	if !strings.Contains(out, "plain failure") {
		t.Fatalf("expected plain error message preserved, got %q", out)
	}
}
