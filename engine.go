// Contracts for the external engines the pipelines drive: encoders, the
// pixel-format converter, the sample-rate converter, and the container
// writer. The pipelines treat all of these as synchronous request/response
// collaborators; none of them is called concurrently.

package avmux

import "io"

// VideoEncoderConfig configures a video encoder.
type VideoEncoderConfig struct {
	Width      int
	Height     int
	FrameRate  Rational // e.g. 2997/100 for 29.97 fps
	BitrateBps int
	GOPSize    int // max frames between keyframes
}

// DefaultVideoEncoderConfig returns the fixed video encode configuration.
func DefaultVideoEncoderConfig() VideoEncoderConfig {
	return VideoEncoderConfig{
		Width:      1280,
		Height:     720,
		FrameRate:  Rational{Num: 2997, Den: 100},
		BitrateBps: 8_000_000,
		GOPSize:    12,
	}
}

// TimeBase returns the encoder timebase implied by the frame rate: one tick
// per frame.
func (c VideoEncoderConfig) TimeBase() Rational {
	return Rational{Num: c.FrameRate.Den, Den: c.FrameRate.Num}
}

// AudioEncoderConfig configures an audio encoder.
type AudioEncoderConfig struct {
	SampleRate int
	Channels   int
	BitrateBps int
}

// DefaultAudioEncoderConfig returns the fixed audio encode configuration.
func DefaultAudioEncoderConfig() AudioEncoderConfig {
	return AudioEncoderConfig{
		SampleRate: 48000,
		Channels:   2,
		BitrateBps: 160_000,
	}
}

// VideoEncoder consumes raw frames and produces encoded units.
//
// A unit of input does not always yield a unit of output: the encoder may
// answer EncodeBuffered while it fills its internal pipeline. Passing a nil
// frame requests one flush step; the encoder then emits one buffered unit
// per call until it answers EncodeDrained.
type VideoEncoder interface {
	io.Closer

	Encode(frame *VideoFrame) (*EncodedUnit, EncodeStatus, error)

	// TimeBase is the timebase frame PTS values are expressed in.
	TimeBase() Rational

	// PixelFormat is the raw input format the encoder requires.
	PixelFormat() PixelFormat

	// Codec identifies the produced bitstream.
	Codec() CodecID

	// Headers returns codec out-of-band configuration for the container
	// (for H.264: SPS and PPS as separate entries).
	Headers() [][]byte
}

// AudioEncoder consumes raw sample blocks and produces encoded units, with
// the same buffering and flush contract as VideoEncoder.
type AudioEncoder interface {
	io.Closer

	Encode(block *AudioBlock) (*EncodedUnit, EncodeStatus, error)

	// TimeBase is the timebase block PTS values are expressed in.
	TimeBase() Rational

	// SampleFormat is the raw input format the encoder requires.
	SampleFormat() AudioFormat

	// SampleRate is the input sample rate the encoder requires.
	SampleRate() int

	// FrameSize is the fixed number of samples per channel consumed by
	// one encode call.
	FrameSize() int

	// Codec identifies the produced bitstream.
	Codec() CodecID

	// Headers returns codec out-of-band configuration for the container
	// (for AAC: the AudioSpecificConfig).
	Headers() [][]byte
}

// PixelConverter converts raw frames between pixel formats at fixed
// dimensions. Created once per run and reused; per-frame re-initialization
// is disallowed.
type PixelConverter interface {
	Convert(src *VideoFrame) (*VideoFrame, error)
}

// PixelConverterFactory creates a converter from src to dst format. The
// video pipeline calls it lazily, exactly once.
type PixelConverterFactory func(src, dst PixelFormat, width, height int) (PixelConverter, error)

// Resampler converts raw audio between sample formats and rates.
type Resampler interface {
	io.Closer

	// Convert resamples src into dst and returns the number of samples
	// per channel written. dst must be large enough for Delay()+src
	// samples rescaled to the output rate, rounded up.
	Convert(dst, src *AudioBlock) (int, error)

	// Delay reports input samples buffered inside the resampler that
	// have not yet been flushed to the output, measured at the output
	// rate.
	Delay() int64
}

// StreamInfo describes one output stream to the container engine.
type StreamInfo struct {
	Codec CodecID

	// TimeBase is the container stream timebase. Packet timestamps for
	// this stream arrive as ticks in this timebase.
	TimeBase Rational

	// Headers is codec out-of-band configuration, as produced by the
	// encoder's Headers method.
	Headers [][]byte

	// Video parameters.
	Width     int
	Height    int
	FrameRate Rational

	// Audio parameters.
	SampleRate int
	Channels   int
}

// ContainerSink appends interleaved packets to an output container. The sink
// buffers and reorders across streams as needed to keep decode timestamps in
// the final container non-decreasing; callers only guarantee per-stream
// ordering.
type ContainerSink interface {
	// WriteHeader declares the stream layout and writes the container
	// header. Must be called exactly once, before any packet.
	WriteHeader(streams []StreamInfo) error

	// WritePacket appends one packet. StreamIndex refers to the slice
	// passed to WriteHeader.
	WritePacket(pkt Packet) error

	// WriteTrailer finalizes the container. Call only after a
	// successful WriteHeader.
	WriteTrailer() error

	Close() error
}
