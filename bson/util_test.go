package bson

import (
	"encoding/hex"
	"strings"
	"testing"
)

func compareValueHex(t *testing.T, v Value, want string, label string) {
	t.Helper()
	buf, err := v.Bytes()
	if err != nil {
		t.Fatalf("%s: Bytes: %v", label, err)
	}
	got := strings.ToLower(hex.EncodeToString(buf))
	want = strings.ToLower(want)
	if got != want {
		t.Errorf("%s: encoded value incorrect.\nGot:  %s\nWant: %s", label, got, want)
	}
}

func assertErr(t *testing.T, got, want error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("expected no error, got %v", got)
		}
		return
	}
	if got == nil {
		t.Errorf("expected error %v, got none", want)
	} else if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
