package avmux

import "fmt"

// Writer rescales finished encoded units from the producing encoder's
// timebase to the container stream's timebase and appends them, in
// submission order, to the container sink. Reordering across streams for
// non-decreasing container decode timestamps is the sink's responsibility.
type Writer struct {
	sink          ContainerSink
	streams       []StreamInfo
	headerWritten bool
}

// NewWriter creates a Writer over the sink for the declared streams.
func NewWriter(sink ContainerSink, streams []StreamInfo) (*Writer, error) {
	if sink == nil {
		return nil, fmt.Errorf("nil container sink")
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("no output streams")
	}
	for i, s := range streams {
		if !s.TimeBase.Valid() {
			return nil, fmt.Errorf("stream %d timebase %v invalid", i, s.TimeBase)
		}
	}
	return &Writer{sink: sink, streams: streams}, nil
}

// WriteHeader writes the container header. Must succeed before any Write.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return failWrite(fmt.Errorf("header already written"))
	}
	if err := w.sink.WriteHeader(w.streams); err != nil {
		return failWrite(fmt.Errorf("container header: %w", err))
	}
	w.headerWritten = true
	return nil
}

// Write rescales one unit to the stream's container timebase, tags it with
// the stream index, and appends it.
//
// PTS and DTS rescale to nearest with ties away from zero, so equal inputs
// give equal outputs and increasing inputs never decrease; an unset
// timestamp passes through untouched.
func (w *Writer) Write(unit *EncodedUnit, stream int) error {
	if !w.headerWritten {
		return failWrite(fmt.Errorf("write before header"))
	}
	if stream < 0 || stream >= len(w.streams) {
		return failWrite(fmt.Errorf("stream index %d out of range", stream))
	}
	if !unit.TimeBase.Valid() {
		return failWrite(fmt.Errorf("unit timebase %v invalid", unit.TimeBase))
	}

	to := w.streams[stream].TimeBase
	pkt := Packet{
		StreamIndex: stream,
		Data:        unit.Data,
		PTS:         RescaleRound(unit.PTS, unit.TimeBase, to, RoundNearest),
		DTS:         RescaleRound(unit.DTS, unit.TimeBase, to, RoundNearest),
		Duration:    Rescale(unit.Duration, unit.TimeBase, to),
		Keyframe:    unit.Keyframe,
	}
	if err := w.sink.WritePacket(pkt); err != nil {
		return failWrite(fmt.Errorf("container append: %w", err))
	}
	return nil
}

// Finish writes the container trailer, but only if the header made it out:
// finalizing a header-less file would corrupt it rather than salvage it.
func (w *Writer) Finish() error {
	if !w.headerWritten {
		return nil
	}
	if err := w.sink.WriteTrailer(); err != nil {
		return failWrite(fmt.Errorf("container trailer: %w", err))
	}
	return nil
}
