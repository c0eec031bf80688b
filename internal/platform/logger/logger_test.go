package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/curriculum-backend/internal/platform/ctxutil"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestSanitizeRedactsSecretsAndHashesIdentity(t *testing.T) {
	log, logs := observed()
	log.Info("connect", "postgres_password", "hunter2", "client_ip", "10.0.0.7", "file_name", "a.csv")

	fields := logs.All()[0].ContextMap()
	if fields["postgres_password"] != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", fields["postgres_password"])
	}
	if ip, _ := fields["client_ip"].(string); len(ip) != len("hash:")+12 || ip == "10.0.0.7" {
		t.Fatalf("client_ip not hashed: %v", fields["client_ip"])
	}
	if fields["file_name"] != "a.csv" {
		t.Fatalf("plain field changed: %v", fields["file_name"])
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	log, logs := observed()
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "r-1"})
	log.WithContext(ctx).Info("import complete")
	log.WithContext(context.Background()).Info("no ids")

	all := logs.All()
	if got := all[0].ContextMap(); got["trace_id"] != "t-1" || got["request_id"] != "r-1" {
		t.Fatalf("ids missing: %v", got)
	}
	if got := all[1].ContextMap(); len(got) != 0 {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestNewNop(t *testing.T) {
	log, err := New("nop")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("discarded", "k", "v")
}
