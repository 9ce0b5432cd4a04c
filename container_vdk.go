// Container output through the vdk muxers. The container format is inferred
// from the output path's extension; unrecognized extensions fall back to
// MP4. vdk's interleaved writers take care of cross-stream reordering, so
// this adapter only translates stream descriptions and packets.

package avmux

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/deepch/vdk/av"
	"github.com/deepch/vdk/av/avutil"
	"github.com/deepch/vdk/codec/aacparser"
	"github.com/deepch/vdk/codec/h264parser"
	"github.com/deepch/vdk/format"
	"github.com/deepch/vdk/format/mp4"
)

var registerFormats sync.Once

// nanoTimeBase is vdk's packet clock: time.Duration ticks.
var nanoTimeBase = Rational{Num: 1, Den: int64(time.Second)}

// fileSink adapts a vdk muxer to the ContainerSink contract.
type fileSink struct {
	mux     av.MuxCloser
	streams []StreamInfo
}

// CreateContainer opens a container sink at the given path, choosing the
// format by extension and falling back to MP4.
func CreateContainer(path string) (ContainerSink, error) {
	registerFormats.Do(format.RegisterAll)

	if mux, err := avutil.Create(path); err == nil {
		return &fileSink{mux: mux}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &fileSink{mux: &fileMuxer{Muxer: mp4.NewMuxer(f), file: f}}, nil
}

// WriteHeader declares the streams to the vdk muxer, building codec data
// from the out-of-band headers the encoders produced.
func (s *fileSink) WriteHeader(streams []StreamInfo) error {
	codecs := make([]av.CodecData, 0, len(streams))
	for i, info := range streams {
		cd, err := codecData(info)
		if err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
		codecs = append(codecs, cd)
	}
	if err := s.mux.WriteHeader(codecs); err != nil {
		return err
	}
	s.streams = streams
	return nil
}

// WritePacket converts one stream-timebase packet to vdk's duration clock
// and appends it. vdk muxers key frame ordering off the decode time, so the
// packet Time carries the DTS (PTS when the codec emits no separate DTS)
// and CompositionTime the PTS-DTS offset.
func (s *fileSink) WritePacket(pkt Packet) error {
	if pkt.StreamIndex < 0 || pkt.StreamIndex >= len(s.streams) {
		return fmt.Errorf("packet for unknown stream %d", pkt.StreamIndex)
	}
	tb := s.streams[pkt.StreamIndex].TimeBase

	dts := pkt.DTS
	if dts == NoTimestamp {
		dts = pkt.PTS
	}
	pts := pkt.PTS
	if pts == NoTimestamp {
		pts = dts
	}

	return s.mux.WritePacket(av.Packet{
		Idx:             int8(pkt.StreamIndex),
		IsKeyFrame:      pkt.Keyframe,
		Time:            time.Duration(Rescale(dts, tb, nanoTimeBase)),
		CompositionTime: time.Duration(Rescale(pts-dts, tb, nanoTimeBase)),
		Duration:        time.Duration(Rescale(pkt.Duration, tb, nanoTimeBase)),
		Data:            pkt.Data,
	})
}

func (s *fileSink) WriteTrailer() error {
	return s.mux.WriteTrailer()
}

func (s *fileSink) Close() error {
	return s.mux.Close()
}

func codecData(info StreamInfo) (av.CodecData, error) {
	switch info.Codec {
	case CodecH264:
		if len(info.Headers) < 2 {
			return nil, fmt.Errorf("H264 stream needs SPS and PPS headers, got %d", len(info.Headers))
		}
		return h264parser.NewCodecDataFromSPSAndPPS(info.Headers[0], info.Headers[1])
	case CodecAAC:
		if len(info.Headers) < 1 {
			return nil, fmt.Errorf("AAC stream needs an AudioSpecificConfig header")
		}
		return aacparser.NewCodecDataFromMPEG4AudioConfigBytes(info.Headers[0])
	default:
		return nil, fmt.Errorf("codec %v not supported by the container engine", info.Codec)
	}
}

// fileMuxer is the MP4 fallback for unrecognized extensions: a plain muxer
// over a file we opened ourselves.
type fileMuxer struct {
	*mp4.Muxer
	file *os.File
}

func (m *fileMuxer) Close() error {
	return m.file.Close()
}
