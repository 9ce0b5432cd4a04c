package avmux

import (
	"fmt"
	"math"
)

// videoPipeline pulls generated images, converts them to the encoder's pixel
// format, and forwards encoded units to the Writer. The converter is created
// lazily on the first frame and reused for the whole run; re-initializing it
// per frame is disallowed.
type videoPipeline struct {
	source     VideoSource
	enc        VideoEncoder
	newConv    PixelConverterFactory
	conv       PixelConverter
	convMisses int // sanity counter: factory invocations, must stay <= 1

	stream   int
	timeBase Rational

	// index counts submissions, not emissions: it advances once per step
	// even when the encoder buffers, and keeps advancing through flush
	// steps so the draining stream keeps moving forward in time.
	index int64
	state pipelineState
}

func newVideoPipeline(source VideoSource, enc VideoEncoder, stream int, factory PixelConverterFactory) (*videoPipeline, error) {
	p := &videoPipeline{
		source:   source,
		enc:      enc,
		newConv:  factory,
		stream:   stream,
		timeBase: enc.TimeBase(),
	}
	if !p.timeBase.Valid() {
		return nil, fmt.Errorf("video encoder timebase %v invalid", p.timeBase)
	}
	if p.newConv == nil {
		p.newConv = NewPixelConverter
	}
	return p, nil
}

func (p *videoPipeline) active() bool {
	return p != nil && p.state != pipelineDone
}

// time returns the running presentation time in seconds, +Inf once drained.
func (p *videoPipeline) time() float64 {
	if !p.active() {
		return math.Inf(1)
	}
	return float64(p.index) * p.timeBase.Seconds()
}

// step performs one emit call, mirroring audioPipeline.step for video.
func (p *videoPipeline) step(w *Writer, flush bool) error {
	if p.state == pipelineDone {
		return failEncode(ErrPipelineDone)
	}
	if flush && p.state == pipelineNormal {
		p.state = pipelineFlushing
	}

	var frame *VideoFrame
	if p.state == pipelineNormal {
		img, err := p.source.NextFrame()
		if err != nil {
			return failEncode(fmt.Errorf("video source: %w", err))
		}

		if p.conv == nil {
			conv, err := p.newConv(img.Format, p.enc.PixelFormat(), img.Width, img.Height)
			if err != nil {
				return failSetup(fmt.Errorf("pixel converter: %w", err))
			}
			p.conv = conv
			p.convMisses++
		}

		frame, err = p.conv.Convert(img)
		if err != nil {
			return failEncode(fmt.Errorf("pixel convert: %w", err))
		}
		frame.PTS = p.index
	}

	unit, status, err := p.enc.Encode(frame)
	if err != nil {
		return failEncode(fmt.Errorf("video encode: %w", err))
	}
	p.index++

	switch status {
	case EncodeProduced:
		if err := w.Write(unit, p.stream); err != nil {
			return err
		}
	case EncodeDrained:
		p.state = pipelineDone
	}
	return nil
}

// close releases the pipeline's encoder. The converter holds no external
// resources.
func (p *videoPipeline) close() error {
	if p == nil {
		return nil
	}
	p.conv = nil
	if p.enc != nil {
		err := p.enc.Close()
		p.enc = nil
		return err
	}
	return nil
}
