package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/acd1034/tryrustc/internal/token"
)

func TestError_StringIncludesPositionWhenValid(t *testing.T) {
	pos := token.Position{Filename: "test.c", Line: 3, Column: 5}
	err := New(Parse, pos, "expected %q, found %q", ";", "}")
	got := err.Error()
	if !strings.Contains(got, "test.c:3:5") {
		t.Errorf("expected position prefix in %q", got)
	}
	if !strings.Contains(got, "parse") {
		t.Errorf("expected category in %q", got)
	}
}

func TestError_StringOmitsPositionWhenInvalid(t *testing.T) {
	err := New(Control, token.Position{}, "no terminator in function %q", "f")
	got := err.Error()
	if strings.Contains(got, ":0:0") {
		t.Errorf("an invalid position must not be rendered, got %q", got)
	}
}

func TestWrap_NilErrorStaysNil(t *testing.T) {
	if Wrap(nil, Lex, token.Position{}) != nil {
		t.Fatal("Wrap(nil, ...) must return nil")
	}
}

func TestWrap_PreservesCauseForUnwrapping(t *testing.T) {
	pos := token.Position{Filename: "test.c", Line: 1, Column: 1}
	inner := errors.New("unexpected character '`'")
	wrapped := Wrap(inner, Lex, pos)

	cause := errors.Cause(wrapped)
	asErr, ok := cause.(*Error)
	if !ok {
		t.Fatalf("expected errors.Cause to recover a *Error, got %T", cause)
	}
	if asErr.Category != Lex {
		t.Errorf("expected category Lex, got %v", asErr.Category)
	}
	if asErr.Message != inner.Error() {
		t.Errorf("expected message %q, got %q", inner.Error(), asErr.Message)
	}
}

func TestReport_WritesToErrorWriterSeam(t *testing.T) {
	var buf bytes.Buffer
	old := errorWriter
	errorWriter = &buf
	defer func() { errorWriter = old }()

	Report(New(Type, token.Position{}, "bad type"))

	out := buf.String()
	if !strings.Contains(out, "error:") {
		t.Errorf("expected Report to prefix with \"error:\", got %q", out)
	}
	if !strings.Contains(out, "bad type") {
		t.Errorf("expected the underlying message in output, got %q", out)
	}
}
