package migrate

import (
	"errors"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", "up", 0)
	if !errors.Is(err, ErrMissingDSN) {
		t.Fatalf("Run with empty DSN: err = %v, want ErrMissingDSN", err)
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, direction := range []string{"", "invalid", "UP", "Down", "both"} {
		t.Run(direction, func(t *testing.T) {
			err := Run("postgres://localhost/test", direction, 0)
			if err == nil {
				t.Fatalf("Run with direction %q should return error", direction)
			}
			if errors.Is(err, ErrMissingDSN) {
				t.Error("direction should be validated before the DSN")
			}
		})
	}
}

func TestRun_NegativeSteps(t *testing.T) {
	if err := Run("postgres://localhost/test", "up", -1); err == nil {
		t.Fatal("Run with negative steps should return error")
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "://localhost/test", "postgres://invalid-host:5432/test"} {
		t.Run(dsn, func(t *testing.T) {
			err := Run(dsn, "up", 0)
			if err == nil {
				t.Fatalf("Run with DSN %q should return error", dsn)
			}
			if errors.Is(err, ErrNoChange) {
				t.Error("Run should never surface ErrNoChange")
			}
		})
	}
}

func TestVersion_EmptyDSN(t *testing.T) {
	if _, _, err := Version(""); !errors.Is(err, ErrMissingDSN) {
		t.Fatalf("Version with empty DSN: err = %v, want ErrMissingDSN", err)
	}
}

func TestErrNoChange(t *testing.T) {
	if ErrNoChange == nil {
		t.Fatal("ErrNoChange should not be nil")
	}
}
