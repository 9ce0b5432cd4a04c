package avmux

import (
	"encoding/binary"
	"math"
	"testing"
)

func makeS16Block(rate, channels int, samples []int16) *AudioBlock {
	b := allocAudioBlock(AudioFormatS16, channels, rate, len(samples))
	for i, v := range samples {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			binary.LittleEndian.PutUint16(b.Data[0][off:], uint16(v))
		}
	}
	return b
}

func f32At(b *AudioBlock, ch, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b.Data[ch][i*4:]))
}

func TestNewResampler_RejectsIdentity(t *testing.T) {
	if _, err := NewResampler(AudioFormatS16, 48000, AudioFormatS16, 48000, 2); err == nil {
		t.Error("expected error for no-op conversion")
	}
}

func TestLinearResampler_FormatOnly(t *testing.T) {
	r, err := NewResampler(AudioFormatS16, 48000, AudioFormatF32P, 48000, 2)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	src := makeS16Block(48000, 2, []int16{0, 16384, -16384, 32767, -32768})
	dst := allocAudioBlock(AudioFormatF32P, 2, 48000, src.Samples)

	n, err := r.Convert(dst, src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if n != src.Samples {
		t.Fatalf("Convert wrote %d samples, want %d", n, src.Samples)
	}
	if r.Delay() != 0 {
		t.Errorf("Delay() = %d for same-rate conversion, want 0", r.Delay())
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768, -1}
	for ch := 0; ch < 2; ch++ {
		for i, w := range want {
			if got := f32At(dst, ch, i); math.Abs(float64(got-w)) > 1e-6 {
				t.Errorf("sample[%d][%d] = %v, want %v", ch, i, got, w)
			}
		}
	}
}

func TestLinearResampler_DownsampleCount(t *testing.T) {
	// 2:1 downsample. The resampler holds the last input sample across
	// calls, so output counts settle to half the input per call.
	r, err := NewResampler(AudioFormatS16, 32000, AudioFormatS16, 16000, 1)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	in := make([]int16, 10)
	total := 0
	for call := 0; call < 20; call++ {
		src := makeS16Block(32000, 1, in)
		need := RescaleInt(r.Delay()+int64(len(in)), 16000, 32000, RoundUp)
		dst := allocAudioBlock(AudioFormatS16, 1, 16000, int(need))
		n, err := r.Convert(dst, src)
		if err != nil {
			t.Fatalf("Convert call %d: %v", call, err)
		}
		if n > int(need) {
			t.Fatalf("call %d wrote %d samples into room for %d", call, n, need)
		}
		total += n
	}

	want := 20 * 10 / 2
	if total < want-2 || total > want {
		t.Errorf("total output = %d, want about %d", total, want)
	}
}

func TestLinearResampler_UpsampleCount(t *testing.T) {
	r, err := NewResampler(AudioFormatS16, 44100, AudioFormatF32P, 48000, 2)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	in := make([]int16, 441)
	total := 0
	for call := 0; call < 10; call++ {
		src := makeS16Block(44100, 2, in)
		need := RescaleInt(r.Delay()+int64(len(in)), 48000, 44100, RoundUp)
		dst := allocAudioBlock(AudioFormatF32P, 2, 48000, int(need))
		n, err := r.Convert(dst, src)
		if err != nil {
			t.Fatalf("Convert call %d: %v", call, err)
		}
		total += n
	}

	want := 10 * 441 * 48000 / 44100
	if total < want-3 || total > want {
		t.Errorf("total output = %d, want about %d", total, want)
	}
}

func TestLinearResampler_ConstantSignal(t *testing.T) {
	// Linear interpolation of a constant signal is the same constant.
	r, err := NewResampler(AudioFormatS16, 44100, AudioFormatF32P, 48000, 1)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	in := make([]int16, 100)
	for i := range in {
		in[i] = 16384
	}
	for call := 0; call < 3; call++ {
		src := makeS16Block(44100, 1, in)
		need := RescaleInt(r.Delay()+int64(len(in)), 48000, 44100, RoundUp)
		dst := allocAudioBlock(AudioFormatF32P, 1, 48000, int(need))
		n, err := r.Convert(dst, src)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		for i := 0; i < n; i++ {
			if got := f32At(dst, 0, i); math.Abs(float64(got)-0.5) > 1e-6 {
				t.Fatalf("call %d sample %d = %v, want 0.5", call, i, got)
			}
		}
	}
}

func TestLinearResampler_Delay(t *testing.T) {
	r, err := NewResampler(AudioFormatS16, 44100, AudioFormatF32P, 48000, 1)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	if r.Delay() != 0 {
		t.Errorf("Delay() before first conversion = %d, want 0", r.Delay())
	}

	src := makeS16Block(44100, 1, make([]int16, 50))
	dst := allocAudioBlock(AudioFormatF32P, 1, 48000, 60)
	if _, err := r.Convert(dst, src); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if r.Delay() != 2 {
		t.Errorf("Delay() after conversion = %d, want 2", r.Delay())
	}
}

func TestLinearResampler_RejectsWrongInput(t *testing.T) {
	r, err := NewResampler(AudioFormatS16, 44100, AudioFormatF32P, 48000, 2)
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	defer r.Close()

	src := makeS16Block(48000, 2, make([]int16, 10))
	dst := allocAudioBlock(AudioFormatF32P, 2, 48000, 20)
	if _, err := r.Convert(dst, src); err == nil {
		t.Error("expected error for mismatched input rate")
	}
}
