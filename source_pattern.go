package avmux

// PatternConfig configures the procedural video source.
type PatternConfig struct {
	Width  int // Frame width (default: 1280)
	Height int // Frame height (default: 720)
}

// DefaultPatternConfig returns the default pattern source configuration.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{Width: 1280, Height: 720}
}

// PatternSource generates synthetic RGB24 frames: a horizontal red ramp, a
// vertical green ramp, and an animated XOR lattice on the blue channel. The
// frame buffer is reused across calls.
type PatternSource struct {
	config PatternConfig

	frameData []byte
	frame     VideoFrame
	index     int
}

// NewPatternSource creates a new procedural video source.
func NewPatternSource(config PatternConfig) *PatternSource {
	if config.Width <= 0 {
		config.Width = 1280
	}
	if config.Height <= 0 {
		config.Height = 720
	}

	stride := config.Width * 3
	data := make([]byte, stride*config.Height)

	return &PatternSource{
		config:    config,
		frameData: data,
		frame: VideoFrame{
			Data:   [][]byte{data},
			Stride: []int{stride},
			Width:  config.Width,
			Height: config.Height,
			Format: PixelFormatRGB24,
		},
	}
}

// NextFrame generates the next frame. The returned frame shares storage with
// the source and is valid until the following NextFrame call.
func (s *PatternSource) NextFrame() (*VideoFrame, error) {
	s.fill(s.index)
	s.index++
	return &s.frame, nil
}

// Width returns the frame width.
func (s *PatternSource) Width() int { return s.config.Width }

// Height returns the frame height.
func (s *PatternSource) Height() int { return s.config.Height }

// Format returns PixelFormatRGB24.
func (s *PatternSource) Format() PixelFormat { return PixelFormatRGB24 }

func (s *PatternSource) fill(i int) {
	w, h := s.config.Width, s.config.Height
	stride := s.frame.Stride[0]
	for y := 0; y < h; y++ {
		p := s.frameData[y*stride:]
		g := byte(y * 255 / h)
		for x := 0; x < w; x++ {
			b := byte(255)
			if ((x+i)^(y+i))&64 != 0 {
				b = 0
			}
			p[x*3+0] = byte(x * 255 / w)
			p[x*3+1] = g
			p[x*3+2] = b
		}
	}
}
