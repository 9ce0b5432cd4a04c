// Pull interfaces for the raw content generators. The pipelines drive both
// sources synchronously on one thread of control; a source call must not
// block on anything but its own computation.

package avmux

// VideoSource produces raw video frames on demand.
type VideoSource interface {
	// NextFrame generates the next frame. The returned frame is valid
	// until the following NextFrame call.
	NextFrame() (*VideoFrame, error)

	// Width and Height are the fixed frame dimensions.
	Width() int
	Height() int

	// Format is the pixel format of produced frames.
	Format() PixelFormat
}

// AudioSource produces raw audio sample blocks on demand.
type AudioSource interface {
	// NextBlock generates the next samples-per-channel block. The
	// returned block is valid until the following NextBlock call.
	NextBlock(samples int) (*AudioBlock, error)

	// SampleRate returns the audio sample rate.
	SampleRate() int

	// Channels returns the number of audio channels.
	Channels() int

	// Format is the sample format of produced blocks.
	Format() AudioFormat
}
