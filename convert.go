package avmux

import "fmt"

// NewPixelConverter creates a converter between the given formats at fixed
// dimensions. Identity conversions return a passthrough. This is the default
// PixelConverterFactory used by the video pipeline.
func NewPixelConverter(src, dst PixelFormat, width, height int) (PixelConverter, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("converter dimensions must be positive and even, got %dx%d", width, height)
	}
	if src == dst {
		return passthroughConverter{}, nil
	}
	if src == PixelFormatRGB24 && dst == PixelFormatI420 {
		return newRGBToI420(width, height), nil
	}
	return nil, fmt.Errorf("unsupported pixel conversion: %v -> %v", src, dst)
}

type passthroughConverter struct{}

func (passthroughConverter) Convert(src *VideoFrame) (*VideoFrame, error) {
	return src, nil
}

// rgbToI420 converts packed RGB24 to planar YUV 4:2:0 using BT.601
// fixed-point coefficients. The output planes are pre-allocated once and
// reused for every frame.
type rgbToI420 struct {
	width, height int
	outY          []byte
	outU          []byte
	outV          []byte
	out           VideoFrame
}

func newRGBToI420(width, height int) *rgbToI420 {
	ySize := width * height
	uvSize := (width / 2) * (height / 2)

	c := &rgbToI420{
		width:  width,
		height: height,
		outY:   make([]byte, ySize),
		outU:   make([]byte, uvSize),
		outV:   make([]byte, uvSize),
	}
	c.out = VideoFrame{
		Data:   [][]byte{c.outY, c.outU, c.outV},
		Stride: []int{width, width / 2, width / 2},
		Width:  width,
		Height: height,
		Format: PixelFormatI420,
	}
	return c
}

func (c *rgbToI420) Convert(src *VideoFrame) (*VideoFrame, error) {
	if src.Format != PixelFormatRGB24 {
		return nil, fmt.Errorf("converter expects RGB24 input, got %v", src.Format)
	}
	if src.Width != c.width || src.Height != c.height {
		return nil, fmt.Errorf("converter expects %dx%d input, got %dx%d",
			c.width, c.height, src.Width, src.Height)
	}

	rgb := src.Data[0]
	stride := src.Stride[0]
	uvStride := c.width / 2

	for y := 0; y < c.height; y++ {
		row := rgb[y*stride:]
		for x := 0; x < c.width; x++ {
			r := int(row[x*3+0])
			g := int(row[x*3+1])
			b := int(row[x*3+2])
			c.outY[y*c.width+x] = byte((66*r+129*g+25*b+128)>>8 + 16)
		}
	}

	// Chroma from 2x2 averages of the RGB block.
	for y := 0; y < c.height/2; y++ {
		r0 := rgb[(2*y)*stride:]
		r1 := rgb[(2*y+1)*stride:]
		for x := 0; x < c.width/2; x++ {
			i0 := 2 * x * 3
			i1 := i0 + 3
			r := (int(r0[i0]) + int(r0[i1]) + int(r1[i0]) + int(r1[i1])) / 4
			g := (int(r0[i0+1]) + int(r0[i1+1]) + int(r1[i0+1]) + int(r1[i1+1])) / 4
			b := (int(r0[i0+2]) + int(r0[i1+2]) + int(r1[i0+2]) + int(r1[i1+2])) / 4
			c.outU[y*uvStride+x] = byte((-38*r-74*g+112*b+128)>>8 + 128)
			c.outV[y*uvStride+x] = byte((112*r-94*g-18*b+128)>>8 + 128)
		}
	}

	c.out.PTS = src.PTS
	return &c.out, nil
}
