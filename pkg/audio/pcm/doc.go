// Package pcm describes raw interleaved 16-bit PCM and converts it between
// byte, float and channel layouts.
//
//	f := pcm.Format{SampleRate: 48000, Channels: 2}
//	n := f.BytesInDuration(20 * time.Millisecond) // 3840
//
// Downmix and Upmix convert between mono and stereo; Float64s and
// AppendInt16s move samples in and out of the normalized float domain used by
// the resampler.
package pcm
