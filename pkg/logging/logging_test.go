package logging

import (
	"os"
	"testing"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	os.Unsetenv(LogLevelEnvVar)

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}

	// silent mode still hands out a usable logger
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	Debug("must not panic")
}

func TestInitialize_Levels(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	t.Setenv(LogFileEnvVar, tmp.Name())

	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		t.Run(level, func(t *testing.T) {
			if err := Initialize(level); err != nil {
				t.Errorf("Initialize(%q) unexpected error: %v", level, err)
			}
		})
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	t.Setenv(LogFileEnvVar, tmp.Name())
	t.Setenv(LogLevelEnvVar, "info")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() unexpected error: %v", err)
	}

	Info("written to file sink")
	Sync()

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("no log output reached the file sink")
	}
}

func TestGetLogger_BeforeInitialize(t *testing.T) {
	logger = nil

	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil before Initialize")
	}
}
