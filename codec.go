package avmux

// CodecID identifies an encoded bitstream format.
type CodecID int

const (
	CodecUnknown CodecID = iota
	CodecH264
	CodecAAC
)

func (c CodecID) String() string {
	switch c {
	case CodecH264:
		return "H264"
	case CodecAAC:
		return "AAC"
	default:
		return "Unknown"
	}
}

// IsVideo reports whether the codec carries video.
func (c CodecID) IsVideo() bool {
	return c == CodecH264
}

// IsAudio reports whether the codec carries audio.
func (c CodecID) IsAudio() bool {
	return c == CodecAAC
}
