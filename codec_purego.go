//go:build darwin || linux

// H.264 and AAC encoding via libavmux_codec using purego.
//
// libavmux_codec is a thin native wrapper around libavcodec with a
// primitive-only API, loaded dynamically at runtime. Library locations
// checked (in order):
//   - AVMUX_CODEC_LIB_PATH environment variable
//   - build/ directory under the module root (development)
//   - System library paths

package avmux

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	codecLibOnce    sync.Once
	codecLibHandle  uintptr
	codecLibInitErr error
	codecLibLoaded  bool
)

// libavmux_codec function pointers
var (
	avmuxCodecVersion   func() uintptr
	avmuxCodecLastError func() uintptr

	avmuxH264EncoderCreate  func(width, height, tbNum, tbDen, bitrate, gop int32) uint64
	avmuxH264EncoderEncode  func(encoder uint64, yPlane, uPlane, vPlane uintptr, yStride, uvStride int32, pts int64, flush int32, outData uintptr, outCapacity int32, outPTS, outDTS, outDuration, outKeyframe uintptr) int32
	avmuxH264EncoderHeaders func(encoder uint64, spsOut uintptr, spsCapacity int32, spsLen uintptr, ppsOut uintptr, ppsCapacity int32, ppsLen uintptr) int32
	avmuxH264EncoderDestroy func(encoder uint64)

	avmuxAACEncoderCreate    func(sampleRate, channels, bitrate int32) uint64
	avmuxAACEncoderFrameSize func(encoder uint64) int32
	avmuxAACEncoderEncode    func(encoder uint64, plane0, plane1 uintptr, samples int32, pts int64, flush int32, outData uintptr, outCapacity int32, outPTS, outDTS, outDuration uintptr) int32
	avmuxAACEncoderConfig    func(encoder uint64, out uintptr, capacity int32, outLen uintptr) int32
	avmuxAACEncoderDestroy   func(encoder uint64)
)

// Return codes from avmux_codec.h
const (
	avmuxCodecOK           = 0
	avmuxCodecError        = -1
	avmuxCodecErrorNoMem   = -2
	avmuxCodecErrorInvalid = -3
	avmuxCodecErrorCodec   = -4
)

func loadCodecLib() error {
	codecLibOnce.Do(func() {
		for _, path := range codecLibPaths() {
			handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if err == nil {
				codecLibHandle = handle
				break
			}
		}
		if codecLibHandle == 0 {
			codecLibInitErr = fmt.Errorf("libavmux_codec not found (set AVMUX_CODEC_LIB_PATH)")
			return
		}
		registerCodecSymbols()
		codecLibLoaded = true
	})
	return codecLibInitErr
}

func codecLibPaths() []string {
	libName := "libavmux_codec.so"
	if runtime.GOOS == "darwin" {
		libName = "libavmux_codec.dylib"
	}

	var paths []string
	if dir := os.Getenv("AVMUX_CODEC_LIB_PATH"); dir != "" {
		paths = append(paths, filepath.Join(dir, libName))
	}
	if root := findModuleRoot(); root != "" {
		paths = append(paths, filepath.Join(root, "build", libName))
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			libName,
			filepath.Join("/usr/local/lib", libName),
			filepath.Join("/opt/homebrew/lib", libName),
		)
	case "linux":
		paths = append(paths,
			libName,
			filepath.Join("/usr/local/lib", libName),
			filepath.Join("/usr/lib", libName),
		)
	}
	return paths
}

func registerCodecSymbols() {
	purego.RegisterLibFunc(&avmuxCodecVersion, codecLibHandle, "avmux_codec_version")
	purego.RegisterLibFunc(&avmuxCodecLastError, codecLibHandle, "avmux_codec_error")

	purego.RegisterLibFunc(&avmuxH264EncoderCreate, codecLibHandle, "avmux_h264_encoder_create")
	purego.RegisterLibFunc(&avmuxH264EncoderEncode, codecLibHandle, "avmux_h264_encoder_encode")
	purego.RegisterLibFunc(&avmuxH264EncoderHeaders, codecLibHandle, "avmux_h264_encoder_headers")
	purego.RegisterLibFunc(&avmuxH264EncoderDestroy, codecLibHandle, "avmux_h264_encoder_destroy")

	purego.RegisterLibFunc(&avmuxAACEncoderCreate, codecLibHandle, "avmux_aac_encoder_create")
	purego.RegisterLibFunc(&avmuxAACEncoderFrameSize, codecLibHandle, "avmux_aac_encoder_frame_size")
	purego.RegisterLibFunc(&avmuxAACEncoderEncode, codecLibHandle, "avmux_aac_encoder_encode")
	purego.RegisterLibFunc(&avmuxAACEncoderConfig, codecLibHandle, "avmux_aac_encoder_config")
	purego.RegisterLibFunc(&avmuxAACEncoderDestroy, codecLibHandle, "avmux_aac_encoder_destroy")
}

// IsCodecLibAvailable checks if libavmux_codec can be loaded.
func IsCodecLibAvailable() bool {
	return loadCodecLib() == nil && codecLibLoaded
}

// CodecLibVersion returns the wrapped libavcodec version string.
func CodecLibVersion() string {
	if !IsCodecLibAvailable() {
		return ""
	}
	return goStringFromPtr(avmuxCodecVersion())
}

func codecLibError() string {
	ptr := avmuxCodecLastError()
	if ptr == 0 {
		return "unknown error"
	}
	return goStringFromPtr(ptr)
}

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := *(*unsafe.Pointer)(unsafe.Pointer(&ptr))
	var length int
	for {
		if *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) == 0 {
			break
		}
		length++
		if length > 1024 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// findModuleRoot walks up from the working directory to the directory
// containing go.mod.
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// encodeOut is the heap-allocated output parameter block for encode calls.
// Output parameters must be heap-allocated for purego to work correctly on
// arm64.
type encodeOut struct {
	PTS      int64
	DTS      int64
	Duration int64
	Keyframe int64
}

// H264Encoder implements VideoEncoder over the native H.264 encoder.
type H264Encoder struct {
	config VideoEncoderConfig

	handle    uint64
	outputBuf []byte
	out       *encodeOut
	sps       []byte
	pps       []byte

	mu sync.Mutex
}

// NewH264Encoder creates a native H.264 encoder.
func NewH264Encoder(config VideoEncoderConfig) (*H264Encoder, error) {
	if err := loadCodecLib(); err != nil {
		return nil, fmt.Errorf("H264 encoder not available: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", config.Width, config.Height)
	}
	if !config.FrameRate.Valid() {
		return nil, fmt.Errorf("invalid frame rate %v", config.FrameRate)
	}
	if config.GOPSize <= 0 {
		config.GOPSize = 12
	}

	tb := config.TimeBase()
	handle := avmuxH264EncoderCreate(int32(config.Width), int32(config.Height),
		int32(tb.Num), int32(tb.Den), int32(config.BitrateBps), int32(config.GOPSize))
	if handle == 0 {
		return nil, fmt.Errorf("failed to create H264 encoder: %s", codecLibError())
	}

	e := &H264Encoder{
		config:    config,
		handle:    handle,
		outputBuf: make([]byte, config.Width*config.Height*3),
		out:       &encodeOut{},
	}
	if err := e.loadHeaders(); err != nil {
		avmuxH264EncoderDestroy(handle)
		return nil, err
	}
	return e, nil
}

func (e *H264Encoder) loadHeaders() error {
	sps := make([]byte, 256)
	pps := make([]byte, 256)
	lens := make([]int32, 2)

	rc := avmuxH264EncoderHeaders(e.handle,
		uintptr(unsafe.Pointer(&sps[0])), int32(len(sps)), uintptr(unsafe.Pointer(&lens[0])),
		uintptr(unsafe.Pointer(&pps[0])), int32(len(pps)), uintptr(unsafe.Pointer(&lens[1])))
	runtime.KeepAlive(lens)
	if rc != avmuxCodecOK {
		return fmt.Errorf("failed to read H264 headers: %s", codecLibError())
	}
	e.sps = sps[:lens[0]]
	e.pps = pps[:lens[1]]
	return nil
}

// Encode submits one frame, or one flush step when frame is nil.
func (e *H264Encoder) Encode(frame *VideoFrame) (*EncodedUnit, EncodeStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle == 0 {
		return nil, 0, fmt.Errorf("encoder closed")
	}

	var y, u, v uintptr
	var yStride, uvStride int32
	flush := int32(1)
	var pts int64
	if frame != nil {
		if frame.Format != PixelFormatI420 {
			return nil, 0, fmt.Errorf("H264 encoder expects I420 input, got %v", frame.Format)
		}
		y = uintptr(unsafe.Pointer(&frame.Data[0][0]))
		u = uintptr(unsafe.Pointer(&frame.Data[1][0]))
		v = uintptr(unsafe.Pointer(&frame.Data[2][0]))
		yStride = int32(frame.Stride[0])
		uvStride = int32(frame.Stride[1])
		flush = 0
		pts = frame.PTS
	}

	n := avmuxH264EncoderEncode(e.handle, y, u, v, yStride, uvStride, pts, flush,
		uintptr(unsafe.Pointer(&e.outputBuf[0])), int32(len(e.outputBuf)),
		uintptr(unsafe.Pointer(&e.out.PTS)), uintptr(unsafe.Pointer(&e.out.DTS)),
		uintptr(unsafe.Pointer(&e.out.Duration)), uintptr(unsafe.Pointer(&e.out.Keyframe)))
	runtime.KeepAlive(frame)
	runtime.KeepAlive(e.out)

	if n < 0 {
		return nil, 0, fmt.Errorf("H264 encode failed: %s", codecLibError())
	}
	if n == 0 {
		if flush != 0 {
			return nil, EncodeDrained, nil
		}
		return nil, EncodeBuffered, nil
	}

	unit := &EncodedUnit{
		Data:     append([]byte(nil), e.outputBuf[:n]...),
		PTS:      e.out.PTS,
		DTS:      e.out.DTS,
		Duration: e.out.Duration,
		TimeBase: e.TimeBase(),
		Keyframe: e.out.Keyframe != 0,
	}
	return unit, EncodeProduced, nil
}

// TimeBase returns one tick per frame.
func (e *H264Encoder) TimeBase() Rational { return e.config.TimeBase() }

// PixelFormat returns the required input format.
func (e *H264Encoder) PixelFormat() PixelFormat { return PixelFormatI420 }

// Codec returns CodecH264.
func (e *H264Encoder) Codec() CodecID { return CodecH264 }

// Headers returns the SPS and PPS.
func (e *H264Encoder) Headers() [][]byte { return [][]byte{e.sps, e.pps} }

// Close destroys the native encoder.
func (e *H264Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != 0 {
		avmuxH264EncoderDestroy(e.handle)
		e.handle = 0
	}
	return nil
}

// AACEncoder implements AudioEncoder over the native AAC encoder.
type AACEncoder struct {
	config AudioEncoderConfig

	handle    uint64
	frameSize int
	outputBuf []byte
	out       *encodeOut
	asc       []byte

	mu sync.Mutex
}

// NewAACEncoder creates a native AAC encoder.
func NewAACEncoder(config AudioEncoderConfig) (*AACEncoder, error) {
	if err := loadCodecLib(); err != nil {
		return nil, fmt.Errorf("AAC encoder not available: %w", err)
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 48000
	}
	if config.Channels <= 0 {
		config.Channels = 2
	}
	if config.Channels > 2 {
		return nil, fmt.Errorf("AAC encoder supports max 2 channels, got %d", config.Channels)
	}

	handle := avmuxAACEncoderCreate(int32(config.SampleRate), int32(config.Channels), int32(config.BitrateBps))
	if handle == 0 {
		return nil, fmt.Errorf("failed to create AAC encoder: %s", codecLibError())
	}

	frameSize := int(avmuxAACEncoderFrameSize(handle))
	if frameSize <= 0 {
		avmuxAACEncoderDestroy(handle)
		return nil, fmt.Errorf("invalid AAC frame size %d", frameSize)
	}

	e := &AACEncoder{
		config:    config,
		handle:    handle,
		frameSize: frameSize,
		outputBuf: make([]byte, 8192),
		out:       &encodeOut{},
	}
	if err := e.loadConfig(); err != nil {
		avmuxAACEncoderDestroy(handle)
		return nil, err
	}
	return e, nil
}

func (e *AACEncoder) loadConfig() error {
	asc := make([]byte, 64)
	ascLen := make([]int32, 1)

	rc := avmuxAACEncoderConfig(e.handle,
		uintptr(unsafe.Pointer(&asc[0])), int32(len(asc)), uintptr(unsafe.Pointer(&ascLen[0])))
	runtime.KeepAlive(ascLen)
	if rc != avmuxCodecOK {
		return fmt.Errorf("failed to read AAC config: %s", codecLibError())
	}
	e.asc = asc[:ascLen[0]]
	return nil
}

// Encode submits one sample block, or one flush step when block is nil.
func (e *AACEncoder) Encode(block *AudioBlock) (*EncodedUnit, EncodeStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle == 0 {
		return nil, 0, fmt.Errorf("encoder closed")
	}

	var plane0, plane1 uintptr
	var samples int32
	flush := int32(1)
	var pts int64
	if block != nil {
		if block.Format != AudioFormatF32P {
			return nil, 0, fmt.Errorf("AAC encoder expects F32P input, got %v", block.Format)
		}
		plane0 = uintptr(unsafe.Pointer(&block.Data[0][0]))
		if block.Channels > 1 {
			plane1 = uintptr(unsafe.Pointer(&block.Data[1][0]))
		}
		samples = int32(block.Samples)
		flush = 0
		pts = block.PTS
	}

	n := avmuxAACEncoderEncode(e.handle, plane0, plane1, samples, pts, flush,
		uintptr(unsafe.Pointer(&e.outputBuf[0])), int32(len(e.outputBuf)),
		uintptr(unsafe.Pointer(&e.out.PTS)), uintptr(unsafe.Pointer(&e.out.DTS)),
		uintptr(unsafe.Pointer(&e.out.Duration)))
	runtime.KeepAlive(block)
	runtime.KeepAlive(e.out)

	if n < 0 {
		return nil, 0, fmt.Errorf("AAC encode failed: %s", codecLibError())
	}
	if n == 0 {
		if flush != 0 {
			return nil, EncodeDrained, nil
		}
		return nil, EncodeBuffered, nil
	}

	unit := &EncodedUnit{
		Data:     append([]byte(nil), e.outputBuf[:n]...),
		PTS:      e.out.PTS,
		DTS:      e.out.DTS,
		Duration: e.out.Duration,
		TimeBase: e.TimeBase(),
		Keyframe: true,
	}
	return unit, EncodeProduced, nil
}

// TimeBase returns one tick per sample.
func (e *AACEncoder) TimeBase() Rational {
	return Rational{Num: 1, Den: int64(e.config.SampleRate)}
}

// SampleFormat returns the required input format.
func (e *AACEncoder) SampleFormat() AudioFormat { return AudioFormatF32P }

// SampleRate returns the input sample rate.
func (e *AACEncoder) SampleRate() int { return e.config.SampleRate }

// FrameSize returns samples per channel consumed by one encode call.
func (e *AACEncoder) FrameSize() int { return e.frameSize }

// Codec returns CodecAAC.
func (e *AACEncoder) Codec() CodecID { return CodecAAC }

// Headers returns the AudioSpecificConfig.
func (e *AACEncoder) Headers() [][]byte { return [][]byte{e.asc} }

// Close destroys the native encoder.
func (e *AACEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != 0 {
		avmuxAACEncoderDestroy(e.handle)
		e.handle = 0
	}
	return nil
}
