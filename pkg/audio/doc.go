// Package audio groups the audio packages of opusmux.
//
//   - oggopus: Ogg-Opus stream assembly (headers, framing, granules)
//   - webm: Opus extraction from WebM recordings
//   - codec/ebml, codec/ogg, codec/opus: container and codec bindings
//   - pcm, resampler: raw PCM arithmetic and rate/channel conversion
package audio
