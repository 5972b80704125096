// Package webm extracts Opus audio from WebM (Matroska) streams and re-muxes
// it into Ogg-Opus.
//
// The Extractor consumes events from [ebml.Decoder]. It latches the Opus
// track's channel count and CodecPrivate (a complete OpusHead), then turns
// every Block or SimpleBlock of that track into one Ogg packet.
//
// WebM blocks do not carry their duration. Each frame is assumed to be
// [FrameSize] samples, except a frame followed by DiscardPadding, which is
// shortened by the padding and never goes below zero. Only the first frame of
// a laced block is kept.
package webm
