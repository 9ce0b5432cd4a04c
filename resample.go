package avmux

import (
	"encoding/binary"
	"fmt"
	"math"
)

// LinearResampler converts raw audio between sample formats and rates. Rate
// conversion is linear interpolation in 32.32 fixed point; it keeps the last
// input sample per channel across calls, so output counts vary call to call
// and Delay reports what is still held back.
type LinearResampler struct {
	inFormat  AudioFormat
	outFormat AudioFormat
	inRate    int
	outRate   int
	channels  int

	step   uint64 // input advance per output sample, 32.32
	phase  uint64 // position past prev, 32.32
	prev   []float32
	primed bool
}

// NewResampler creates a resampler for the given conversion. At least one of
// format or rate must differ; for matching layouts no resampler is needed
// and the destination buffer should alias the source instead.
func NewResampler(inFormat AudioFormat, inRate int, outFormat AudioFormat, outRate, channels int) (*LinearResampler, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", inRate, outRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if inFormat == outFormat && inRate == outRate {
		return nil, fmt.Errorf("resampler with no conversion: %v@%d", inFormat, inRate)
	}
	return &LinearResampler{
		inFormat:  inFormat,
		outFormat: outFormat,
		inRate:    inRate,
		outRate:   outRate,
		channels:  channels,
		step:      (uint64(inRate) << 32) / uint64(outRate),
		prev:      make([]float32, channels),
	}, nil
}

// Delay reports input samples buffered inside the resampler, measured at the
// output rate.
func (r *LinearResampler) Delay() int64 {
	if r.inRate == r.outRate || !r.primed {
		return 0
	}
	return RescaleInt(1, int64(r.outRate), int64(r.inRate), RoundUp)
}

// Convert resamples src into dst and returns the samples per channel
// written. dst must provide capacity for Delay()+src.Samples rescaled to the
// output rate, rounded up.
func (r *LinearResampler) Convert(dst, src *AudioBlock) (int, error) {
	if src.Format != r.inFormat || src.Rate != r.inRate || src.Channels != r.channels {
		return 0, fmt.Errorf("resampler expects %v@%d/%dch input, got %v@%d/%dch",
			r.inFormat, r.inRate, r.channels, src.Format, src.Rate, src.Channels)
	}

	if r.inRate == r.outRate {
		// Pure format conversion, sample for sample.
		if err := checkBlockRoom(dst, src.Samples); err != nil {
			return 0, err
		}
		for ch := 0; ch < r.channels; ch++ {
			for j := 0; j < src.Samples; j++ {
				putSample(dst, ch, j, sampleAt(src, ch, j))
			}
		}
		dst.Samples = src.Samples
		return src.Samples, nil
	}

	return r.convertRate(dst, src)
}

// Close releases resampler state.
func (r *LinearResampler) Close() error {
	r.prev = nil
	r.primed = false
	return nil
}

func (r *LinearResampler) convertRate(dst, src *AudioBlock) (int, error) {
	// Work against a virtual input of prev + src so interpolation spans
	// call boundaries without copying.
	hadPrev := r.primed
	nIn := src.Samples
	if hadPrev {
		nIn++
	}
	at := func(ch, i int) float32 {
		if hadPrev {
			if i == 0 {
				return r.prev[ch]
			}
			i--
		}
		return sampleAt(src, ch, i)
	}

	n := 0
	pos := r.phase
	for int(pos>>32)+1 < nIn {
		i := int(pos >> 32)
		frac := float32(pos&0xFFFFFFFF) / float32(1<<32)
		if err := checkBlockRoom(dst, n+1); err != nil {
			return 0, err
		}
		for ch := 0; ch < r.channels; ch++ {
			a := at(ch, i)
			b := at(ch, i+1)
			putSample(dst, ch, n, a+(b-a)*frac)
		}
		n++
		pos += r.step
	}

	if nIn > 0 {
		for ch := 0; ch < r.channels; ch++ {
			r.prev[ch] = at(ch, nIn-1)
		}
		r.phase = pos - uint64(nIn-1)<<32
		if src.Samples > 0 {
			r.primed = true
		}
	}

	dst.Samples = n
	return n, nil
}

func checkBlockRoom(dst *AudioBlock, samples int) error {
	bps := dst.Format.BytesPerSample()
	if dst.Format.Planar() {
		for _, plane := range dst.Data {
			if len(plane) < samples*bps {
				return fmt.Errorf("resample output buffer too small: %d samples", samples)
			}
		}
		return nil
	}
	if len(dst.Data[0]) < samples*dst.Channels*bps {
		return fmt.Errorf("resample output buffer too small: %d samples", samples)
	}
	return nil
}

// sampleAt reads one sample as a float in [-1, 1).
func sampleAt(b *AudioBlock, ch, i int) float32 {
	switch b.Format {
	case AudioFormatS16:
		off := (i*b.Channels + ch) * 2
		return float32(int16(binary.LittleEndian.Uint16(b.Data[0][off:]))) / 32768
	case AudioFormatF32P:
		off := i * 4
		return math.Float32frombits(binary.LittleEndian.Uint32(b.Data[ch][off:]))
	default:
		return 0
	}
}

// putSample writes one float sample in the block's own format.
func putSample(b *AudioBlock, ch, i int, v float32) {
	switch b.Format {
	case AudioFormatS16:
		s := v * 32768
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		off := (i*b.Channels + ch) * 2
		binary.LittleEndian.PutUint16(b.Data[0][off:], uint16(int16(s)))
	case AudioFormatF32P:
		off := i * 4
		binary.LittleEndian.PutUint32(b.Data[ch][off:], math.Float32bits(v))
	}
}
