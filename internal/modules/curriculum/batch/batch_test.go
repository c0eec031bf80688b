package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

type recordingSink struct {
	failOn int
	calls  []int
}

func (s *recordingSink) InsertBatch(ctx context.Context, rows []*curriculum.Outcome) error {
	s.calls = append(s.calls, len(rows))
	if len(s.calls) == s.failOn {
		return errors.New("duplicate key value violates unique constraint")
	}
	return nil
}

func synthetic(n int) []*curriculum.Outcome {
	out := make([]*curriculum.Outcome, n)
	for i := range out {
		out[i] = &curriculum.Outcome{
			LearningArea:       "Mathematics",
			Subject:            "Mathematics",
			Level:              fmt.Sprintf("Year %d", i%10),
			ContentDescription: fmt.Sprintf("outcome %d", i),
		}
	}
	return out
}

func TestPersistAllChunks(t *testing.T) {
	sink := &recordingSink{}
	res, err := Persist(context.Background(), sink, synthetic(2500), 1000)
	require.NoError(t, err)
	require.Equal(t, 2500, res.Committed)
	require.Equal(t, 3, res.Chunks)
	require.Equal(t, []int{1000, 1000, 500}, sink.calls)
}

func TestPersistStopsAtFailingChunk(t *testing.T) {
	sink := &recordingSink{failOn: 2}
	res, err := Persist(context.Background(), sink, synthetic(2500), 1000)
	require.Error(t, err)

	var pe *curriculum.PersistenceError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, 1000, pe.Committed)
	require.Equal(t, 2, pe.Chunk)
	require.Contains(t, pe.Error(), "duplicate key")
	require.Equal(t, 1000, res.Committed)
	require.Len(t, sink.calls, 2, "chunk 3 must never be attempted")
}

func TestPersistDefaultsChunkSize(t *testing.T) {
	sink := &recordingSink{}
	res, err := Persist(context.Background(), sink, synthetic(1001), 0)
	require.NoError(t, err)
	require.Equal(t, []int{1000, 1}, sink.calls)
	require.Equal(t, 1001, res.Committed)
}

func TestPersistEmpty(t *testing.T) {
	sink := &recordingSink{}
	res, err := Persist(context.Background(), sink, nil, 1000)
	require.NoError(t, err)
	require.Zero(t, res.Committed)
	require.Empty(t, sink.calls)
}

func TestPersistCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &recordingSink{}
	_, err := Persist(ctx, sink, synthetic(10), 5)
	var pe *curriculum.PersistenceError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, 1, pe.Chunk)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, sink.calls)
}

func TestChunks(t *testing.T) {
	require.Equal(t, 0, Chunks(0, 1000))
	require.Equal(t, 1, Chunks(1, 1000))
	require.Equal(t, 1, Chunks(1000, 1000))
	require.Equal(t, 3, Chunks(2500, 1000))
}
