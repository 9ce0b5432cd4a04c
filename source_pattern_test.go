package avmux

import "testing"

func TestNewPatternSource_Defaults(t *testing.T) {
	source := NewPatternSource(PatternConfig{})
	if source.Width() != 1280 {
		t.Errorf("Width() = %d, want 1280", source.Width())
	}
	if source.Height() != 720 {
		t.Errorf("Height() = %d, want 720", source.Height())
	}
	if source.Format() != PixelFormatRGB24 {
		t.Errorf("Format() = %v, want RGB24", source.Format())
	}
}

func TestPatternSource_PixelFormula(t *testing.T) {
	w, h := 256, 128
	source := NewPatternSource(PatternConfig{Width: w, Height: h})

	frame, err := source.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}

	// Frame 0: red ramps with x, green with y, blue follows the XOR
	// lattice.
	at := func(x, y int) (byte, byte, byte) {
		p := frame.Data[0][y*frame.Stride[0]+x*3:]
		return p[0], p[1], p[2]
	}
	for _, px := range [][2]int{{0, 0}, {100, 50}, {255, 127}, {64, 64}} {
		x, y := px[0], px[1]
		r, g, b := at(x, y)
		if want := byte(x * 255 / w); r != want {
			t.Errorf("red(%d,%d) = %d, want %d", x, y, r, want)
		}
		if want := byte(y * 255 / h); g != want {
			t.Errorf("green(%d,%d) = %d, want %d", x, y, g, want)
		}
		want := byte(255)
		if (x^y)&64 != 0 {
			want = 0
		}
		if b != want {
			t.Errorf("blue(%d,%d) = %d, want %d", x, y, b, want)
		}
	}
}

func TestPatternSource_Animates(t *testing.T) {
	source := NewPatternSource(PatternConfig{Width: 256, Height: 256})

	f0, _ := source.NextFrame()
	// The source reuses its buffer, so snapshot the blue channel.
	blue0 := make([]byte, 0, 256)
	for x := 0; x < 256; x++ {
		blue0 = append(blue0, f0.Data[0][x*3+2])
	}

	f1, _ := source.NextFrame()
	same := true
	for x := 0; x < 256; x++ {
		if f1.Data[0][x*3+2] != blue0[x] {
			same = false
			break
		}
	}
	if same {
		t.Error("blue lattice did not move between frames")
	}
}

func TestPatternSource_Deterministic(t *testing.T) {
	a := NewPatternSource(PatternConfig{Width: 64, Height: 64})
	b := NewPatternSource(PatternConfig{Width: 64, Height: 64})

	for i := 0; i < 3; i++ {
		fa, _ := a.NextFrame()
		fb, _ := b.NextFrame()
		for j := range fa.Data[0] {
			if fa.Data[0][j] != fb.Data[0][j] {
				t.Fatalf("frame %d differs at byte %d", i, j)
			}
		}
	}
}
