// Raw frame and sample-block types shared by the sources, pipelines, and
// conversion engines.

package avmux

// PixelFormat represents video pixel formats.
type PixelFormat int

const (
	PixelFormatRGB24 PixelFormat = iota // Packed RGB, 3 bytes per pixel
	PixelFormatI420                     // YUV 4:2:0 planar (Y + U + V)
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatRGB24:
		return "RGB24"
	case PixelFormatI420:
		return "I420"
	default:
		return "Unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatRGB24:
		return 1 // Packed
	case PixelFormatI420:
		return 3 // Y, U, V
	default:
		return 0
	}
}

// AudioFormat represents raw audio sample formats.
type AudioFormat int

const (
	AudioFormatS16  AudioFormat = iota // Signed 16-bit PCM, interleaved
	AudioFormatF32P                    // 32-bit float, one plane per channel
)

func (a AudioFormat) String() string {
	switch a {
	case AudioFormatS16:
		return "S16"
	case AudioFormatF32P:
		return "F32P"
	default:
		return "Unknown"
	}
}

// BytesPerSample returns the number of bytes per sample for this format.
func (a AudioFormat) BytesPerSample() int {
	switch a {
	case AudioFormatS16:
		return 2
	case AudioFormatF32P:
		return 4
	default:
		return 0
	}
}

// Planar reports whether samples are stored one plane per channel.
func (a AudioFormat) Planar() bool {
	return a == AudioFormatF32P
}

// VideoFrame is a raw video frame. Data holds one slice per plane; packed
// formats use a single plane. The storage is typically owned by the producer
// and valid until its next call.
type VideoFrame struct {
	Data   [][]byte
	Stride []int
	Width  int
	Height int
	Format PixelFormat

	// PTS is the presentation timestamp in the consuming encoder's
	// timebase. Assigned by the pipeline, not the source.
	PTS int64
}

// AudioBlock is a block of raw audio samples. Interleaved formats use a
// single plane holding Samples*Channels values; planar formats use one plane
// per channel holding Samples values each.
type AudioBlock struct {
	Data     [][]byte
	Samples  int // samples per channel
	Channels int
	Rate     int
	Format   AudioFormat

	// PTS is the presentation timestamp in the consuming encoder's
	// timebase. Assigned by the pipeline, not the source.
	PTS int64
}

// allocAudioBlock allocates zeroed storage for a block of the given layout.
func allocAudioBlock(format AudioFormat, channels, rate, samples int) *AudioBlock {
	b := &AudioBlock{
		Samples:  samples,
		Channels: channels,
		Rate:     rate,
		Format:   format,
	}
	if format.Planar() {
		b.Data = make([][]byte, channels)
		for ch := range b.Data {
			b.Data[ch] = make([]byte, samples*format.BytesPerSample())
		}
	} else {
		b.Data = [][]byte{make([]byte, samples*channels*format.BytesPerSample())}
	}
	return b
}
