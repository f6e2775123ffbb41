// Package stream delivers chunks to a connected player in batches, throttled
// by the client's observed acknowledgement rate.
package stream

import (
	"fmt"
	"math"
)

const (
	// initialChunksPerTick is the flow-control rate a freshly connected
	// player starts with, before any ChunkBatchReceived feedback arrives.
	initialChunksPerTick = 5.0
	// maxUnackedBatches is how many batches may be in flight before the
	// sender stops issuing new ones and waits for acknowledgement.
	maxUnackedBatches = 10
)

// Sender abstracts the connection's outbound packet writer so Queue can be
// tested without a real network connection.
type Sender interface {
	SendChunkBatchStart() error
	SendChunkData(x, z int32) error
	SendChunkBatchEnd(batchSize int32) error
}

// ErrTooManyUnackedBatches is returned by Flush when the client has fallen
// behind acknowledging prior batches.
var ErrTooManyUnackedBatches = fmt.Errorf("stream: too many unacknowledged batches")

// Queue is one player's FIFO chunk-delivery queue with adaptive flow
// control.
type Queue struct {
	pending        []pos
	chunksPerTick  float64
	unackedBatches int
}

type pos struct{ X, Z int32 }

// NewQueue returns an empty delivery queue at the default rate.
func NewQueue() *Queue {
	return &Queue{chunksPerTick: initialChunksPerTick}
}

// Enqueue appends a chunk position to the back of the delivery queue.
func (q *Queue) Enqueue(x, z int32) {
	q.pending = append(q.pending, pos{X: x, Z: z})
}

// Len returns the number of chunks still waiting to be sent.
func (q *Queue) Len() int { return len(q.pending) }

// Flush sends up to one batch (chunksPerTick chunks, rounded up) through
// sender, unless too many batches are already unacknowledged.
func (q *Queue) Flush(sender Sender) (int, error) {
	if len(q.pending) == 0 {
		return 0, nil
	}
	if q.unackedBatches >= maxUnackedBatches {
		return 0, ErrTooManyUnackedBatches
	}

	batchSize := int(math.Ceil(q.chunksPerTick))
	if batchSize > len(q.pending) {
		batchSize = len(q.pending)
	}
	if batchSize == 0 {
		return 0, nil
	}

	if err := sender.SendChunkBatchStart(); err != nil {
		return 0, fmt.Errorf("stream: send batch start: %w", err)
	}
	for i := 0; i < batchSize; i++ {
		p := q.pending[i]
		if err := sender.SendChunkData(p.X, p.Z); err != nil {
			return 0, fmt.Errorf("stream: send chunk (%d,%d): %w", p.X, p.Z, err)
		}
	}
	if err := sender.SendChunkBatchEnd(int32(batchSize)); err != nil {
		return 0, fmt.Errorf("stream: send batch end: %w", err)
	}

	q.pending = q.pending[batchSize:]
	q.unackedBatches++
	return batchSize, nil
}

// AckBatch records a ChunkBatchReceived acknowledgement, adjusting the
// sender's rate to ceil(rate) chunks per tick per the client's own estimate.
func (q *Queue) AckBatch(rate float64) {
	if q.unackedBatches > 0 {
		q.unackedBatches--
	}
	if rate > 0 {
		q.chunksPerTick = math.Ceil(rate)
	}
}
