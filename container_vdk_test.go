package avmux

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateContainer_ByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.mp4", "out.ts", "out.bin"} {
		path := filepath.Join(dir, name)
		sink, err := CreateContainer(path)
		if err != nil {
			t.Fatalf("CreateContainer(%s): %v", name, err)
		}
		if err := sink.Close(); err != nil {
			t.Errorf("Close(%s): %v", name, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("output file %s not created: %v", name, err)
		}
	}
}

func TestCodecData_H264RequiresHeaders(t *testing.T) {
	_, err := codecData(StreamInfo{Codec: CodecH264, Headers: [][]byte{{0x67}}})
	if err == nil {
		t.Error("expected error for missing PPS")
	}
}

func TestCodecData_AACRequiresConfig(t *testing.T) {
	_, err := codecData(StreamInfo{Codec: CodecAAC})
	if err == nil {
		t.Error("expected error for missing AudioSpecificConfig")
	}
}

func TestCodecData_UnknownCodec(t *testing.T) {
	_, err := codecData(StreamInfo{Codec: CodecUnknown})
	if err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestCodecData_AAC(t *testing.T) {
	// AAC-LC, 44.1 kHz, stereo.
	cd, err := codecData(StreamInfo{Codec: CodecAAC, Headers: [][]byte{{0x12, 0x10}}})
	if err != nil {
		t.Fatalf("codecData: %v", err)
	}
	if cd == nil {
		t.Fatal("nil codec data")
	}
}

func TestCodecData_H264(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00, 0x0a, 0xf8, 0x41, 0xa2}
	pps := []byte{0x68, 0xce, 0x38, 0x80}
	cd, err := codecData(StreamInfo{Codec: CodecH264, Headers: [][]byte{sps, pps}})
	if err != nil {
		t.Fatalf("codecData: %v", err)
	}
	if cd == nil {
		t.Fatal("nil codec data")
	}
}

func TestFileSink_UnknownStream(t *testing.T) {
	s := &fileSink{}
	if err := s.WritePacket(Packet{StreamIndex: 0}); err == nil {
		t.Error("expected error for packet before header")
	}
}
