package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInitLoggerInCreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	InitLoggerIn(dir)
	t.Cleanup(InitNop)

	AppLogger.Info("hello")
	ErrorLogger.Error("boom")
	LogDuration(WithTraceID(context.Background(), "req-1"), "test")()
	Sync()

	for _, name := range []string{"app.log", "error.log", "timer.log"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("expected %s to have content", name)
		}
	}
}

func TestNopLoggersAreUsable(t *testing.T) {
	InitNop()
	// must not panic
	AppLogger.Info("ignored")
	LogDuration(context.Background(), "noop")()
}
