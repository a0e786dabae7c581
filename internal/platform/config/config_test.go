package config

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

type portConfig struct {
	Port int `env:"DEFENCE_TEST_PORT" envDefault:"8400"`
}

func TestParseEnv(t *testing.T) {
	t.Run("default applies when unset", func(t *testing.T) {
		var cfg portConfig
		if err := ParseEnv(&cfg); err != nil {
			t.Fatalf("ParseEnv: %v", err)
		}
		if cfg.Port != 8400 {
			t.Fatalf("Port = %d, want 8400", cfg.Port)
		}
	})

	t.Run("environment overrides default", func(t *testing.T) {
		t.Setenv("DEFENCE_TEST_PORT", "9000")
		var cfg portConfig
		if err := ParseEnv(&cfg); err != nil {
			t.Fatalf("ParseEnv: %v", err)
		}
		if cfg.Port != 9000 {
			t.Fatalf("Port = %d, want 9000", cfg.Port)
		}
	})

	t.Run("unparseable value fails", func(t *testing.T) {
		t.Setenv("DEFENCE_TEST_PORT", "eleven")
		var cfg portConfig
		err := ParseEnv(&cfg)
		if err == nil {
			t.Fatal("ParseEnv accepted a non-numeric port")
		}
		if !strings.Contains(err.Error(), "parse env") {
			t.Fatalf("error = %v, want parse env context", err)
		}
	})
}

// Exitf calls os.Exit, so the assertion runs in a child process.
func TestExitf(t *testing.T) {
	if os.Getenv("DEFENCE_TEST_EXITF") == "1" {
		Exitf("boom: %s", "journal unavailable")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf$")
	cmd.Env = append(os.Environ(), "DEFENCE_TEST_EXITF=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("err = %T (%v), want *exec.ExitError", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "boom: journal unavailable") {
		t.Fatalf("output %q does not contain the formatted message", string(out))
	}
}
