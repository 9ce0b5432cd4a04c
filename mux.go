// The interleaving scheduler: drives both encode pipelines frame by frame,
// always advancing whichever stream's next emission is earlier, then drains
// both encoders once the target duration is reached.

package avmux

import "fmt"

// Config holds the fixed encode configuration. Defaults match the classic
// test program: 5 seconds of 29.97 fps 1280x720 video at 8 Mb/s with a
// 48 kHz stereo tone at 160 kb/s.
type Config struct {
	Duration        float64  // target run duration in seconds
	FrameRate       Rational // nominal video frame rate
	Width           int
	Height          int
	VideoBitrateBps int
	AudioBitrateBps int
	SampleRate      int
	Channels        int
}

// DefaultConfig returns the fixed default configuration.
func DefaultConfig() Config {
	return Config{
		Duration:        5.0,
		FrameRate:       Rational{Num: 2997, Den: 100},
		Width:           1280,
		Height:          720,
		VideoBitrateBps: 8_000_000,
		AudioBitrateBps: 160_000,
		SampleRate:      48000,
		Channels:        2,
	}
}

// MuxerConfig wires the collaborators of one run. At least one stream
// (source plus encoder) must be present; the sink is required.
type MuxerConfig struct {
	Duration float64 // target run duration in seconds

	AudioSource  AudioSource
	AudioEncoder AudioEncoder

	VideoSource  VideoSource
	VideoEncoder VideoEncoder

	Sink ContainerSink

	// PixelConverter overrides the video pipeline's converter factory.
	// Nil uses NewPixelConverter.
	PixelConverter PixelConverterFactory

	// MaxBufferSamples bounds audio scratch buffer growth. 0 = unbounded.
	MaxBufferSamples int
}

// Muxer interleaves one audio and one video encode pipeline into a single
// container. Single-threaded and synchronous: one Run call drives the whole
// job to completion on the caller's goroutine.
type Muxer struct {
	cfg    MuxerConfig
	audio  *audioPipeline
	video  *videoPipeline
	writer *Writer

	flushing bool
	closed   bool
}

// NewMuxer validates the wiring and builds the stream layout. Resources
// acquired here (resampler, scratch buffer) are released again if a later
// setup step fails; the engines passed in remain owned by the Muxer from the
// first successful return on and are closed by Run or Close.
func NewMuxer(cfg MuxerConfig) (*Muxer, error) {
	if cfg.Sink == nil {
		return nil, failSetup(fmt.Errorf("container sink required"))
	}
	if (cfg.AudioSource == nil) != (cfg.AudioEncoder == nil) {
		return nil, failSetup(fmt.Errorf("audio source and encoder must be configured together"))
	}
	if (cfg.VideoSource == nil) != (cfg.VideoEncoder == nil) {
		return nil, failSetup(fmt.Errorf("video source and encoder must be configured together"))
	}
	if cfg.AudioEncoder == nil && cfg.VideoEncoder == nil {
		return nil, failSetup(fmt.Errorf("at least one stream required"))
	}
	if cfg.Duration <= 0 {
		return nil, failSetup(fmt.Errorf("duration %v must be positive", cfg.Duration))
	}

	m := &Muxer{cfg: cfg}

	var streams []StreamInfo
	if cfg.VideoEncoder != nil {
		enc := cfg.VideoEncoder
		streams = append(streams, StreamInfo{
			Codec:     enc.Codec(),
			TimeBase:  enc.TimeBase(),
			Headers:   enc.Headers(),
			Width:     cfg.VideoSource.Width(),
			Height:    cfg.VideoSource.Height(),
			FrameRate: Rational{Num: enc.TimeBase().Den, Den: enc.TimeBase().Num},
		})
		p, err := newVideoPipeline(cfg.VideoSource, enc, len(streams)-1, cfg.PixelConverter)
		if err != nil {
			return nil, failSetup(err)
		}
		m.video = p
	}
	if cfg.AudioEncoder != nil {
		enc := cfg.AudioEncoder
		streams = append(streams, StreamInfo{
			Codec:      enc.Codec(),
			TimeBase:   Rational{Num: 1, Den: int64(enc.SampleRate())},
			Headers:    enc.Headers(),
			SampleRate: enc.SampleRate(),
			Channels:   cfg.AudioSource.Channels(),
		})
		p, err := newAudioPipeline(cfg.AudioSource, enc, len(streams)-1, cfg.MaxBufferSamples)
		if err != nil {
			m.video.close()
			return nil, failSetup(err)
		}
		m.audio = p
	}

	w, err := NewWriter(cfg.Sink, streams)
	if err != nil {
		m.audio.close()
		m.video.close()
		return nil, failSetup(err)
	}
	m.writer = w
	return m, nil
}

// Run drives the interleaved encode to completion and finalizes the
// container. It returns nil on full completion or the first fatal failure,
// classified as a *RunError. Resources are released on every path; the
// trailer is attempted whenever the header was written, so an aborted run
// still leaves a best-effort valid file.
func (m *Muxer) Run() (err error) {
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := m.writer.WriteHeader(); err != nil {
		return err
	}
	// From here on the header is out; finalize no matter how the loop
	// ends.
	defer func() {
		ferr := m.writer.Finish()
		if err == nil {
			err = ferr
		}
	}()

	for m.audio.active() || m.video.active() {
		audioTime := m.audio.time() // +Inf when absent or drained
		videoTime := m.video.time()

		// Flushing starts once every remaining stream has reached the
		// target duration, and never reverts.
		if !m.flushing && audioTime >= m.cfg.Duration && videoTime >= m.cfg.Duration {
			m.flushing = true
		}

		// Audio wins ties so identical runs interleave identically.
		switch {
		case m.audio.active() && audioTime <= videoTime:
			err = m.audio.step(m.writer, m.flushing)
		case m.video.active() && videoTime < audioTime:
			err = m.video.step(m.writer, m.flushing)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases every engine the muxer owns. Idempotent; Run calls it
// automatically.
func (m *Muxer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var first error
	if err := m.audio.close(); err != nil {
		first = err
	}
	if err := m.video.close(); err != nil && first == nil {
		first = err
	}
	if m.cfg.Sink != nil {
		if err := m.cfg.Sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
