package main

import (
	"errors"
	"testing"
)

func TestServiceError_Format(t *testing.T) {
	err := WrapError("ChatService", "SubmitQuery", errors.New("model unavailable"))
	if err == nil {
		t.Fatal("Expected wrapped error")
	}
	want := "[ChatService.SubmitQuery] model unavailable"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestWrapError_NilPassthrough(t *testing.T) {
	if err := WrapError("ChatService", "SubmitQuery", nil); err != nil {
		t.Errorf("Wrapping nil should return nil, got %v", err)
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapError("Dataset", "Load", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the inner error")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatal("errors.As should find ServiceError")
	}
	if svcErr.Service != "Dataset" || svcErr.Operation != "Load" {
		t.Errorf("Unexpected fields: %+v", svcErr)
	}
}
