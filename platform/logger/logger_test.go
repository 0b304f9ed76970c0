package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}, &buf
}

func TestWithContextTagsRequestID(t *testing.T) {
	log, buf := captureLogger()
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")

	log.WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("log line missing request id: %s", buf.String())
	}
}

func TestWithContextWithoutIDLeavesLoggerUntagged(t *testing.T) {
	log, buf := captureLogger()

	log.WithContext(context.Background()).Info("hello")

	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("log line should not carry a request id: %s", buf.String())
	}
}
