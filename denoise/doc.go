// Package denoise implements adaptive noise reduction for streamed audio.
//
// A [Reducer] learns a running noise magnitude spectrum during frames its
// voice activity detector classifies as non-voice and attenuates that noise
// in every frame, using one of three selectable spectral rules: spectral
// subtraction, a Wiener filter, or a simplified Kalman gain. Frames are
// produced internally from arbitrary-length input chunks with 50% overlap,
// Hann analysis windowing, and overlap-add reconstruction carried across
// calls.
//
// # Usage
//
// Create one reducer per audio session and feed it chunks in stream order:
//
//	reducer, err := denoise.New(48000, denoise.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer reducer.Close()
//
//	for chunk := range captureFrames {
//	    out, err := reducer.Process(chunk)
//	    if err != nil {
//	        return err
//	    }
//	    playback(out)
//	}
//
//	stats, _ := reducer.Stats()
//	fmt.Printf("noise reduction: %.1f dB\n", stats.NoiseReductionDb)
//
// # Core Types
//
//   - [Reducer]: per-session noise reduction state and entry points
//   - [Config]: validated tuning parameters and algorithm selection
//   - [VAD]: voice activity detector with hangover
//   - [Stats]: per-call quality snapshot
//
// Instances are single-writer; see the concurrency notes on [Reducer].
package denoise
