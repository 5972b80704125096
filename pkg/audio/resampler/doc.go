// Package resampler converts a stream of 16-bit PCM between sample rates and
// between mono and stereo.
//
// Rate conversion uses github.com/tphakala/go-audio-resampling at its high
// quality preset, so no C library is needed.
//
//	src := pcm.Format{SampleRate: 44100, Channels: 2}
//	r, err := resampler.New(in, src, pcm.L16Mono48K)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	io.Copy(out, r)
package resampler
