package avmux

import (
	"fmt"
	"math"
)

// pipelineState is the per-stream emit state machine.
type pipelineState int

const (
	pipelineNormal   pipelineState = iota // pulling input and encoding
	pipelineFlushing                      // draining the encoder's buffer
	pipelineDone                          // fully drained, never stepped again
)

func (s pipelineState) String() string {
	switch s {
	case pipelineNormal:
		return "normal"
	case pipelineFlushing:
		return "flushing"
	case pipelineDone:
		return "done"
	default:
		return "unknown"
	}
}

// audioPipeline pulls raw sample blocks, resamples them into the encoder's
// layout when needed, and forwards encoded units to the Writer. It owns its
// encoder, resampler, and scratch buffer exclusively.
type audioPipeline struct {
	source    AudioSource
	enc       AudioEncoder
	resampler Resampler
	buf       *SampleBuffer // nil when no conversion: raw blocks pass through

	stream   int
	timeBase Rational

	// samples counts samples submitted to the encoder. PTS values derive
	// from it through exact rational rescaling; accumulating a float
	// instead would drift over a long run.
	samples int64

	// pts tracks the end of the last emitted unit, in encoder timebase
	// ticks. Monotonically non-decreasing.
	pts   int64
	state pipelineState
}

// newAudioPipeline wires an audio pipeline. A resampler and scratch buffer
// are created only when the encoder's input layout differs from the
// source's; otherwise the encoder consumes the capture block directly.
func newAudioPipeline(source AudioSource, enc AudioEncoder, stream, bufferLimit int) (*audioPipeline, error) {
	p := &audioPipeline{
		source:   source,
		enc:      enc,
		stream:   stream,
		timeBase: enc.TimeBase(),
	}
	if !p.timeBase.Valid() {
		return nil, fmt.Errorf("audio encoder timebase %v invalid", p.timeBase)
	}
	if enc.FrameSize() <= 0 {
		return nil, fmt.Errorf("audio encoder frame size %d invalid", enc.FrameSize())
	}

	if source.Format() != enc.SampleFormat() || source.SampleRate() != enc.SampleRate() {
		r, err := NewResampler(source.Format(), source.SampleRate(),
			enc.SampleFormat(), enc.SampleRate(), source.Channels())
		if err != nil {
			return nil, err
		}
		buf, err := NewSampleBuffer(enc.SampleFormat(), source.Channels(),
			enc.SampleRate(), enc.FrameSize(), bufferLimit)
		if err != nil {
			r.Close()
			return nil, err
		}
		p.resampler = r
		p.buf = buf
	}
	return p, nil
}

func (p *audioPipeline) active() bool {
	return p != nil && p.state != pipelineDone
}

// time returns the running presentation time in seconds, +Inf once drained
// so the scheduler never selects this stream again.
func (p *audioPipeline) time() float64 {
	if !p.active() {
		return math.Inf(1)
	}
	return float64(p.pts) * p.timeBase.Seconds()
}

// step performs one emit call: pull, convert, encode, and hand any finished
// unit to the Writer. With flush set the encoder is drained instead; the
// first flush call that yields nothing marks the stream done.
func (p *audioPipeline) step(w *Writer, flush bool) error {
	if p.state == pipelineDone {
		return failEncode(ErrPipelineDone)
	}
	if flush && p.state == pipelineNormal {
		p.state = pipelineFlushing
	}

	var block *AudioBlock
	if p.state == pipelineNormal {
		raw, err := p.source.NextBlock(p.enc.FrameSize())
		if err != nil {
			return failEncode(fmt.Errorf("audio source: %w", err))
		}
		block = raw

		if p.resampler != nil {
			// The resampler may still hold samples from earlier
			// calls, so the output count varies; grow the scratch
			// buffer when a call needs more than ever before.
			need := RescaleInt(p.resampler.Delay()+int64(raw.Samples),
				int64(p.enc.SampleRate()), int64(p.source.SampleRate()), RoundUp)
			dst, err := p.buf.Ensure(int(need))
			if err != nil {
				return failResource(err)
			}
			if _, err := p.resampler.Convert(dst, raw); err != nil {
				return failEncode(fmt.Errorf("audio resample: %w", err))
			}
			block = dst
		}

		block.PTS = Rescale(p.samples, Rational{Num: 1, Den: int64(p.enc.SampleRate())}, p.timeBase)
		p.samples += int64(block.Samples)
	}

	unit, status, err := p.enc.Encode(block)
	if err != nil {
		return failEncode(fmt.Errorf("audio encode: %w", err))
	}

	switch status {
	case EncodeProduced:
		if err := w.Write(unit, p.stream); err != nil {
			return err
		}
		// Running time comes from the unit the encoder actually
		// emitted, not from an independent recomputation.
		if end := unit.PTS + unit.Duration; end > p.pts {
			p.pts = end
		}
	case EncodeDrained:
		p.state = pipelineDone
	}
	return nil
}

// close releases everything the pipeline acquired. Safe on partially
// constructed pipelines.
func (p *audioPipeline) close() error {
	if p == nil {
		return nil
	}
	var first error
	if p.resampler != nil {
		if err := p.resampler.Close(); err != nil && first == nil {
			first = err
		}
		p.resampler = nil
	}
	if p.buf != nil {
		p.buf.Release()
		p.buf = nil
	}
	if p.enc != nil {
		if err := p.enc.Close(); err != nil && first == nil {
			first = err
		}
		p.enc = nil
	}
	return first
}
