package applog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestWriteFormat(t *testing.T) {
	buf := &bufCloser{}
	SetOutput(buf)
	defer Close()

	Info("refresh.done", "gen", 3, "mode", "host+path")
	Error("ws.call", errors.New("tab not found"), "action", "close", "title", "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], " INFO refresh.done gen=3 mode=host+path") {
		t.Errorf("info line = %q", lines[0])
	}
	if !strings.Contains(lines[1], ` ERROR ws.call err="tab not found" action=close title=""`) {
		t.Errorf("error line = %q", lines[1])
	}
}

func TestNoOpWithoutOutput(t *testing.T) {
	Close()
	Info("ignored", "k", "v")
}

func TestQuoteTruncates(t *testing.T) {
	got := quote(strings.Repeat("x", maxValueLen+10))
	if !strings.HasSuffix(got, truncSuffix) || len(got) != maxValueLen+len(truncSuffix) {
		t.Errorf("quote did not truncate: len=%d", len(got))
	}
}

func TestSetOutputClosesPrevious(t *testing.T) {
	first := &bufCloser{}
	SetOutput(first)
	SetOutput(&bufCloser{})
	defer Close()
	if !first.closed {
		t.Error("previous output was not closed")
	}
}

func TestInitCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("startup", "version", "test")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "INFO startup version=test") {
		t.Errorf("log content = %q", data)
	}
}
