package avmux

// EncodeStatus reports the outcome of a single encode call.
type EncodeStatus int

const (
	// EncodeProduced means a finished unit is available.
	EncodeProduced EncodeStatus = iota
	// EncodeBuffered means the input was accepted but the encoder is
	// holding it internally; no output this call. Normal backpressure,
	// not an error.
	EncodeBuffered
	// EncodeDrained means a flush step found nothing left: the encoder
	// is fully drained and the stream is at end of stream.
	EncodeDrained
)

func (s EncodeStatus) String() string {
	switch s {
	case EncodeProduced:
		return "produced"
	case EncodeBuffered:
		return "buffered"
	case EncodeDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// EncodedUnit is one finished unit of encoder output. It is produced by an
// encoder, consumed exactly once by the Writer, then discarded. Timestamps
// are ticks in TimeBase, the producing encoder's timebase.
type EncodedUnit struct {
	Data     []byte
	PTS      int64 // presentation timestamp, NoTimestamp when unset
	DTS      int64 // decode timestamp, NoTimestamp when unset
	Duration int64
	TimeBase Rational
	Keyframe bool
}

// Packet is an EncodedUnit after the Writer has rescaled it to a container
// stream's timebase and tagged it with the stream index. This is the form
// handed to the container engine.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	DTS         int64
	Duration    int64
	Keyframe    bool
}
