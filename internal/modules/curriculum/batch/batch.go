package batch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// DefaultChunkSize is used when a non-positive chunk size is requested.
const DefaultChunkSize = 1000

// Sink stores one chunk of outcomes in a single bulk write.
type Sink interface {
	InsertBatch(ctx context.Context, rows []*curriculum.Outcome) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, rows []*curriculum.Outcome) error

func (f SinkFunc) InsertBatch(ctx context.Context, rows []*curriculum.Outcome) error {
	return f(ctx, rows)
}

type Result struct {
	Committed int
	Chunks    int
}

var tracer = otel.Tracer("curriculum/batch")

// Chunks returns ceil(n/size).
func Chunks(n, size int) int {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Persist writes rows in order, one chunk at a time. The first failing chunk
// stops the run with a *curriculum.PersistenceError carrying the committed
// count and the 1-based chunk index. Nothing is retried or rolled back.
func Persist(ctx context.Context, sink Sink, rows []*curriculum.Outcome, size int) (Result, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	res := Result{}
	total := Chunks(len(rows), size)

	for chunk := 1; chunk <= total; chunk++ {
		if err := ctx.Err(); err != nil {
			return res, &curriculum.PersistenceError{Committed: res.Committed, Chunk: chunk, Err: err}
		}
		start := (chunk - 1) * size
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}

		cctx, span := tracer.Start(ctx, "batch.chunk")
		span.SetAttributes(
			attribute.Int("chunk.index", chunk),
			attribute.Int("chunk.total", total),
			attribute.Int("chunk.rows", end-start),
		)
		err := sink.InsertBatch(cctx, rows[start:end])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert failed")
			span.End()
			return res, &curriculum.PersistenceError{Committed: res.Committed, Chunk: chunk, Err: err}
		}
		span.End()

		res.Committed += end - start
		res.Chunks = chunk
	}
	return res, nil
}
