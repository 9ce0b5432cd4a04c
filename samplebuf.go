package avmux

import "fmt"

// SampleBuffer owns the resampled-audio scratch storage for the audio
// pipeline. Capacity grows on demand and never shrinks within a run: a
// request that fits the current storage reuses it without allocating, a
// larger request drops the old planes and allocates exactly the requested
// size.
//
// The buffer only exists when a conversion is actually happening. When the
// encoder input layout equals the capture layout the pipeline hands the raw
// block straight through and owns no separate storage, so there is nothing
// to release twice at teardown.
//
// Single-threaded: never call Ensure concurrently for the same stream.
type SampleBuffer struct {
	format   AudioFormat
	channels int
	rate     int
	capacity int // samples per channel
	limit    int // 0 = unbounded
	block    *AudioBlock
}

// NewSampleBuffer creates a buffer for the given output layout with an
// initial capacity. limit, when positive, bounds any later growth request;
// exceeding it reports ErrBufferLimit, the resource-exhaustion signal.
func NewSampleBuffer(format AudioFormat, channels, rate, initial, limit int) (*SampleBuffer, error) {
	if channels <= 0 || rate <= 0 || initial <= 0 {
		return nil, fmt.Errorf("invalid sample buffer layout: %dch @%dHz, %d samples", channels, rate, initial)
	}
	if limit > 0 && initial > limit {
		return nil, fmt.Errorf("%w: initial %d over limit %d", ErrBufferLimit, initial, limit)
	}
	return &SampleBuffer{
		format:   format,
		channels: channels,
		rate:     rate,
		capacity: initial,
		limit:    limit,
		block:    allocAudioBlock(format, channels, rate, initial),
	}, nil
}

// Cap returns the current capacity in samples per channel.
func (b *SampleBuffer) Cap() int { return b.capacity }

// Ensure returns the scratch block sized to the requested sample count,
// growing the storage only when the request exceeds the current capacity.
func (b *SampleBuffer) Ensure(samples int) (*AudioBlock, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("invalid sample count %d", samples)
	}
	if samples > b.capacity {
		if b.limit > 0 && samples > b.limit {
			return nil, fmt.Errorf("%w: need %d samples, limit %d", ErrBufferLimit, samples, b.limit)
		}
		b.block = allocAudioBlock(b.format, b.channels, b.rate, samples)
		b.capacity = samples
	}
	b.block.Samples = samples
	return b.block, nil
}

// Release drops the owned storage. The buffer must not be used afterwards.
func (b *SampleBuffer) Release() {
	b.block = nil
	b.capacity = 0
}
