// Package oggopus packages Opus audio into an Ogg-Opus logical bitstream
// (RFC 7845).
//
// The package owns the timing side of muxing and leaves the two heavy
// collaborators behind interfaces: an [Encoder] that compresses one
// fixed-size PCM frame, and a [PacketWriter] that serializes logical packets
// into physical Ogg pages.
//
// A PCM stream flows through three explicit stages:
//
//	raw PCM bytes -> FrameAligner -> FrameEncoder -> Muxer -> PacketWriter
//	               AudioFrame      EncodedFrame     Packet
//
// Each stage is a synchronous function from one input to zero or more
// outputs, so every contract can be checked on its own. [EncodePCM] wires
// them together; [MuxFrames] starts at the Muxer for audio that is already
// Opus-encoded.
//
// Example usage:
//
//	cfg := oggopus.Config{SampleRate: 48000, Channels: 2}
//	stats, err := oggopus.EncodePCM(ctx, pcmReader, enc, pageWriter, cfg)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(stats.Duration())
//
// Granule positions are always counted on the 48 kHz reference clock,
// whatever the configured input sample rate.
package oggopus
