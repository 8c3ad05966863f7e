package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDetectOperation(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM user", "SELECT"},
		{"  select 1", "SELECT"},
		{"WITH cte AS (SELECT 1) SELECT * FROM cte", "SELECT"},
		{"INSERT INTO user VALUES (1)", "INSERT"},
		{"UPDATE user SET name = 'x'", "UPDATE"},
		{"DELETE FROM user", "DELETE"},
		{"CREATE TABLE t (id INT)", "UNKNOWN"},
		{"", "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectOperation(tt.sql), "sql %q", tt.sql)
	}
}

func TestNoopTracer(t *testing.T) {
	tr := &NoopTracer{}
	ctx := context.Background()

	outCtx, span := tr.StartSpan(ctx, "test")
	assert.Equal(t, ctx, outCtx)

	// All span operations are safe no-ops.
	span.SetAttributes(attribute.String("k", "v"))
	span.RecordError(errors.New("x"))
	span.SetStatus(codes.Error, "x")
	span.End()
}

func TestOtelTracer_AddQueryAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tr := NewOtelTracer(provider.Tracer("test"))
	_, span := tr.StartSpan(context.Background(), "dbx.command.execute")

	AddQueryAttributes(span, &QueryMetadata{
		SQL:          "UPDATE user SET name = ?",
		Duration:     2 * time.Millisecond,
		RowsAffected: 1,
		Database:     "postgres",
		Operation:    "UPDATE",
	})
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "dbx.command.execute", spans[0].Name)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "postgres", attrs["db.system"].AsString())
	assert.Equal(t, "UPDATE user SET name = ?", attrs["db.statement"].AsString())
	assert.Equal(t, "UPDATE", attrs["db.operation"].AsString())
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestOtelTracer_RecordsError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tr := NewOtelTracer(provider.Tracer("test"))
	_, span := tr.StartSpan(context.Background(), "dbx.command.execute")

	AddQueryAttributes(span, &QueryMetadata{
		SQL:       "INSERT INTO user (email) VALUES (?)",
		Error:     errors.New("duplicate entry"),
		Database:  "mysql",
		Operation: "INSERT",
	})
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "duplicate entry", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}
