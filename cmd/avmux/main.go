// avmux writes a short synthetic A/V clip to a container file, choosing the
// format by the output path's extension.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/thesyncim/avmux"
)

func main() {
	defaults := avmux.DefaultConfig()

	output := flag.String("o", "out.mp4", "output file (extension selects the container format)")
	duration := flag.Float64("d", defaults.Duration, "clip duration in seconds")
	width := flag.Int("w", defaults.Width, "video width")
	height := flag.Int("h", defaults.Height, "video height")
	videoBitrate := flag.Int("vb", defaults.VideoBitrateBps, "video bitrate in bits/s")
	audioBitrate := flag.Int("ab", defaults.AudioBitrateBps, "audio bitrate in bits/s")
	sampleRate := flag.Int("ar", defaults.SampleRate, "audio sample rate in Hz")
	noAudio := flag.Bool("no-audio", false, "disable the audio stream")
	noVideo := flag.Bool("no-video", false, "disable the video stream")
	flag.Parse()

	if !avmux.IsCodecLibAvailable() {
		log.Fatal("libavmux_codec not found; set AVMUX_CODEC_LIB_PATH")
	}
	log.Printf("codec library: %s", avmux.CodecLibVersion())

	cfg := avmux.MuxerConfig{Duration: *duration}

	if !*noVideo {
		patternCfg := avmux.DefaultPatternConfig()
		patternCfg.Width = *width
		patternCfg.Height = *height

		encCfg := avmux.DefaultVideoEncoderConfig()
		encCfg.Width = *width
		encCfg.Height = *height
		encCfg.BitrateBps = *videoBitrate

		enc, err := avmux.NewH264Encoder(encCfg)
		if err != nil {
			log.Fatalf("video encoder: %v", err)
		}
		cfg.VideoSource = avmux.NewPatternSource(patternCfg)
		cfg.VideoEncoder = enc
	}

	if !*noAudio {
		toneCfg := avmux.DefaultToneConfig()

		encCfg := avmux.DefaultAudioEncoderConfig()
		encCfg.SampleRate = *sampleRate
		encCfg.BitrateBps = *audioBitrate

		enc, err := avmux.NewAACEncoder(encCfg)
		if err != nil {
			log.Fatalf("audio encoder: %v", err)
		}
		cfg.AudioSource = avmux.NewToneSource(toneCfg)
		cfg.AudioEncoder = enc
	}

	sink, err := avmux.CreateContainer(*output)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}
	cfg.Sink = sink

	mux, err := avmux.NewMuxer(cfg)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	if err := mux.Run(); err != nil {
		if kind, ok := avmux.Failure(err); ok {
			log.Printf("%v failure: %v", kind, err)
		} else {
			log.Printf("error: %v", err)
		}
		os.Exit(1)
	}
	log.Printf("wrote %s", *output)
}
