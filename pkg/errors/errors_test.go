package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSnapshotStore, cause, "failed to save")

	if err.Code != ErrCodeSnapshotStore {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSnapshotStore)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeDocumentNotFound, "missing document")

	if !Is(err, ErrCodeDocumentNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrCodeInternal) {
		t.Error("Is should not match plain errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeLayout, "boom")); got != ErrCodeLayout {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeLayout)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidDialect, "unknown dialect")
	if got := UserMessage(err); got != "unknown dialect" {
		t.Errorf("UserMessage = %q, want %q", got, "unknown dialect")
	}

	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}

func TestValidateDocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid simple", "notes/today.md", false},
		{"valid nested", "projects/engine/plan.md", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../outside.md", true},
		{"double slash", "a//b.md", true},
		{"backslash", "a\\b.md", true},
		{"control char", "bad\x01name.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateShortID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"abc123", false},
		{"000000", false},
		{"zzzzzz", false},
		{"", true},
		{"abc12", true},
		{"abc1234", true},
		{"ABC123", true},
		{"abc-12", true},
	}

	for _, tt := range tests {
		err := ValidateShortID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateShortID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestValidateTag(t *testing.T) {
	tests := []struct {
		tag     string
		wantErr bool
	}{
		{"urgent", false},
		{"area/backend", false},
		{"", true},
		{"#urgent", true},
		{"has space", true},
	}

	for _, tt := range tests {
		err := ValidateTag(tt.tag)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTag(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
		}
	}
}
