package logger

import (
	"path/filepath"
	"testing"
)

func TestInit_ConsoleOnlyDoesNotPanic(t *testing.T) {
	Init("debug", "")
	Info("hello")
	Sync()
}

func TestInit_WithFileSinkWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ear.log")
	Init("info", path)
	Warn("test warning")
	Sync()
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	if lvl := parseLevel("bogus"); lvl.String() != "info" {
		t.Errorf("parseLevel(bogus) = %v, want info", lvl)
	}
}
