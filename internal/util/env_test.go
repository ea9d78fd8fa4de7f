package util

import "testing"

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_ENV_STRING", "hello")

	if got := GetEnvString("TEST_ENV_STRING", "fallback"); got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	if got := GetEnvString("TEST_ENV_STRING_MISSING", "fallback"); got != "fallback" {
		t.Errorf("got %q, want %q", got, "fallback")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	t.Setenv("TEST_ENV_INT_BAD", "forty-two")

	if got := GetEnvInt("TEST_ENV_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if got := GetEnvInt("TEST_ENV_INT_BAD", 7); got != 7 {
		t.Errorf("got %d, want default 7 for unparseable value", got)
	}
	if got := GetEnvInt("TEST_ENV_INT_MISSING", 7); got != 7 {
		t.Errorf("got %d, want default 7 for missing variable", got)
	}
}

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("TEST_ENV_NUMERIC", "3.5")

	if got := GetEnvNumeric("TEST_ENV_NUMERIC", 1); got != 3.5 {
		t.Errorf("got %v, want 3.5", got)
	}
	if got := GetEnvNumeric("TEST_ENV_NUMERIC_MISSING", 1); got != 1 {
		t.Errorf("got %v, want default 1", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL_TRUE", "true")
	t.Setenv("TEST_ENV_BOOL_FALSE", "false")
	t.Setenv("TEST_ENV_BOOL_BAD", "yes")

	if !GetEnvBool("TEST_ENV_BOOL_TRUE", false) {
		t.Error("got false, want true")
	}
	if GetEnvBool("TEST_ENV_BOOL_FALSE", true) {
		t.Error("got true, want false")
	}
	if !GetEnvBool("TEST_ENV_BOOL_BAD", true) {
		t.Error("got false, want default true for unparseable value")
	}
	if GetEnvBool("TEST_ENV_BOOL_MISSING", false) {
		t.Error("got true, want default false for missing variable")
	}
}
