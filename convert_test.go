package avmux

import "testing"

func solidRGBFrame(w, h int, r, g, b byte) *VideoFrame {
	data := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		data[i*3+0] = r
		data[i*3+1] = g
		data[i*3+2] = b
	}
	return &VideoFrame{
		Data:   [][]byte{data},
		Stride: []int{w * 3},
		Width:  w,
		Height: h,
		Format: PixelFormatRGB24,
	}
}

func TestNewPixelConverter_Passthrough(t *testing.T) {
	conv, err := NewPixelConverter(PixelFormatI420, PixelFormatI420, 640, 480)
	if err != nil {
		t.Fatalf("NewPixelConverter: %v", err)
	}
	frame := &VideoFrame{Format: PixelFormatI420, Width: 640, Height: 480}
	out, err := conv.Convert(frame)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != frame {
		t.Error("identity conversion should return the input frame")
	}
}

func TestNewPixelConverter_OddDimensions(t *testing.T) {
	for _, dims := range [][2]int{{641, 480}, {640, 481}, {0, 480}, {640, -2}} {
		if _, err := NewPixelConverter(PixelFormatRGB24, PixelFormatI420, dims[0], dims[1]); err == nil {
			t.Errorf("NewPixelConverter(%dx%d) succeeded, want error", dims[0], dims[1])
		}
	}
}

func TestNewPixelConverter_Unsupported(t *testing.T) {
	if _, err := NewPixelConverter(PixelFormatI420, PixelFormatRGB24, 640, 480); err == nil {
		t.Error("expected error for unsupported conversion")
	}
}

func TestRGBToI420_KnownColors(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b byte
		y, u, v byte
	}{
		{"gray", 128, 128, 128, 126, 128, 128},
		{"white", 255, 255, 255, 235, 128, 128},
		{"black", 0, 0, 0, 16, 128, 128},
		{"red", 255, 0, 0, 82, 90, 240},
	}
	for _, c := range cases {
		conv, err := NewPixelConverter(PixelFormatRGB24, PixelFormatI420, 4, 4)
		if err != nil {
			t.Fatalf("NewPixelConverter: %v", err)
		}
		out, err := conv.Convert(solidRGBFrame(4, 4, c.r, c.g, c.b))
		if err != nil {
			t.Fatalf("%s: Convert: %v", c.name, err)
		}
		if out.Format != PixelFormatI420 {
			t.Fatalf("%s: output format = %v", c.name, out.Format)
		}
		if got := out.Data[0][0]; got != c.y {
			t.Errorf("%s: Y = %d, want %d", c.name, got, c.y)
		}
		if got := out.Data[1][0]; got != c.u {
			t.Errorf("%s: U = %d, want %d", c.name, got, c.u)
		}
		if got := out.Data[2][0]; got != c.v {
			t.Errorf("%s: V = %d, want %d", c.name, got, c.v)
		}
	}
}

func TestRGBToI420_PlaneLayout(t *testing.T) {
	conv, err := NewPixelConverter(PixelFormatRGB24, PixelFormatI420, 16, 8)
	if err != nil {
		t.Fatalf("NewPixelConverter: %v", err)
	}
	out, err := conv.Convert(solidRGBFrame(16, 8, 10, 20, 30))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(out.Data[0]) != 16*8 {
		t.Errorf("Y plane = %d bytes, want %d", len(out.Data[0]), 16*8)
	}
	if len(out.Data[1]) != 8*4 || len(out.Data[2]) != 8*4 {
		t.Errorf("chroma planes = %d/%d bytes, want %d", len(out.Data[1]), len(out.Data[2]), 8*4)
	}
	if out.Stride[0] != 16 || out.Stride[1] != 8 {
		t.Errorf("strides = %v", out.Stride)
	}
}

func TestRGBToI420_CarriesPTS(t *testing.T) {
	conv, err := NewPixelConverter(PixelFormatRGB24, PixelFormatI420, 4, 4)
	if err != nil {
		t.Fatalf("NewPixelConverter: %v", err)
	}
	src := solidRGBFrame(4, 4, 1, 2, 3)
	src.PTS = 42
	out, err := conv.Convert(src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.PTS != 42 {
		t.Errorf("PTS = %d, want 42", out.PTS)
	}
}

func TestRGBToI420_RejectsWrongSize(t *testing.T) {
	conv, err := NewPixelConverter(PixelFormatRGB24, PixelFormatI420, 8, 8)
	if err != nil {
		t.Fatalf("NewPixelConverter: %v", err)
	}
	if _, err := conv.Convert(solidRGBFrame(4, 4, 0, 0, 0)); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}
