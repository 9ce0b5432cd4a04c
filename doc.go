// Package avmux generates synthetic audio and video, encodes both, and
// interleaves the result into a single media container file.
//
// Key pieces include:
//   - PatternSource/ToneSource: deterministic test content generators
//   - VideoEncoder/AudioEncoder: codec engine contracts plus native
//     H.264/AAC implementations (libavmux_codec)
//   - PixelConverter and LinearResampler: pure-Go format adaptation
//   - Muxer: the interleaving scheduler driving both pipelines
//   - Writer and ContainerSink: timestamp rescaling and container output
//
// # Architecture
//
//	Video: PatternSource -> PixelConverter -> VideoEncoder -> Writer -> ContainerSink
//	Audio: ToneSource -> LinearResampler -> AudioEncoder -> Writer -> ContainerSink
//
// Muxer.Run drives both chains on one goroutine, always stepping whichever
// stream's running time is behind (audio wins ties), then flushes both
// encoders once the target duration is reached. The container format is
// inferred from the output path's extension.
//
// # Native Libraries
//
// The H.264 and AAC encoders load libavmux_codec, a thin wrapper around
// libavcodec, via purego (CGO_ENABLED=0). Set AVMUX_CODEC_LIB_PATH to the
// directory containing the library. All other components, including the
// container writers, are pure Go and always available.
package avmux
