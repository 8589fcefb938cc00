package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load ride")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %q", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeStateConflict, "ride no longer available")
	outer := fmt.Errorf("accept offer: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %q", typed.Code())
	}
}

func TestIs(t *testing.T) {
	err := New(CodeThreshold, "balance at block threshold")
	if !Is(err, CodeThreshold) {
		t.Fatal("expected Is to match code")
	}
	if Is(err, CodeNotFound) {
		t.Fatal("Is matched the wrong code")
	}
	if Is(nil, CodeThreshold) {
		t.Fatal("nil error must not match")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback status %d", meta.HTTPStatus)
	}
}

func TestMetadataDistinguishesConflictFamilies(t *testing.T) {
	if MetadataFor(CodeStateConflict).HTTPStatus == MetadataFor(CodeNotFound).HTTPStatus {
		t.Fatal("state conflicts must be observably distinct from not found")
	}
	if MetadataFor(CodeThreshold).HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatal("threshold violations map to 422")
	}
}
