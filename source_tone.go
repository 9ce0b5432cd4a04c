package avmux

import (
	"encoding/binary"
	"math"
)

// ToneConfig configures the swept sine audio source.
type ToneConfig struct {
	SampleRate    int     // Sample rate (default: 48000)
	Channels      int     // Number of channels (default: 2)
	Frequency     float64 // Starting tone frequency in Hz (default: 110)
	SweepHzPerSec float64 // Frequency increase per second (default: 110)
	Amplitude     float64 // Peak amplitude in S16 units (default: 10000)
}

// DefaultToneConfig returns the default tone source configuration.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate:    48000,
		Channels:      2,
		Frequency:     110,
		SweepHzPerSec: 110,
		Amplitude:     10000,
	}
}

// ToneSource generates a swept sine tone as interleaved S16 samples, the
// same value duplicated across channels. The phase increment itself grows
// every sample, so the pitch rises continuously over the run.
type ToneSource struct {
	config ToneConfig

	phase     float64
	phaseInc  float64
	phaseInc2 float64

	block AudioBlock
}

// NewToneSource creates a new swept sine audio source.
func NewToneSource(config ToneConfig) *ToneSource {
	if config.SampleRate <= 0 {
		config.SampleRate = 48000
	}
	if config.Channels <= 0 {
		config.Channels = 2
	}
	if config.Frequency <= 0 {
		config.Frequency = 110
	}
	if config.SweepHzPerSec <= 0 {
		config.SweepHzPerSec = 110
	}
	if config.Amplitude <= 0 {
		config.Amplitude = 10000
	}

	rate := float64(config.SampleRate)
	return &ToneSource{
		config:    config,
		phaseInc:  2 * math.Pi * config.Frequency / rate,
		phaseInc2: 2 * math.Pi * config.SweepHzPerSec / rate / rate,
		block: AudioBlock{
			Channels: config.Channels,
			Rate:     config.SampleRate,
			Format:   AudioFormatS16,
		},
	}
}

// NextBlock generates the next block of samples per channel. The returned
// block shares storage with the source and is valid until the following
// NextBlock call.
func (s *ToneSource) NextBlock(samples int) (*AudioBlock, error) {
	need := samples * s.config.Channels * 2
	if len(s.block.Data) == 0 || len(s.block.Data[0]) < need {
		s.block.Data = [][]byte{make([]byte, need)}
	}

	buf := s.block.Data[0]
	off := 0
	for j := 0; j < samples; j++ {
		v := int16(math.Sin(s.phase) * s.config.Amplitude)
		for ch := 0; ch < s.config.Channels; ch++ {
			binary.LittleEndian.PutUint16(buf[off:], uint16(v))
			off += 2
		}
		s.phase += s.phaseInc
		s.phaseInc += s.phaseInc2
	}

	s.block.Samples = samples
	return &s.block, nil
}

// SampleRate returns the audio sample rate.
func (s *ToneSource) SampleRate() int { return s.config.SampleRate }

// Channels returns the number of audio channels.
func (s *ToneSource) Channels() int { return s.config.Channels }

// Format returns AudioFormatS16.
func (s *ToneSource) Format() AudioFormat { return AudioFormatS16 }
