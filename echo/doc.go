// Package echo implements adaptive acoustic echo cancellation for streamed
// float64 PCM audio.
//
// A Canceller learns the echo path from a far-end reference signal with a
// normalized least-mean-squares (NLMS) filter and subtracts the estimated
// echo from the captured signal. Double-talk detection freezes adaptation
// while near-end speech dominates, delay compensation aligns the reference
// with the acoustic path, and an optional nonlinear processor clips
// residual echo bursts with a soft knee.
//
// Basic usage:
//
//	canceller, err := echo.New(48000, echo.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer canceller.Close()
//
//	clean, err := canceller.Process(captured, reference)
//
// One Canceller serves one audio session; instances share no state. All
// methods are single-writer: the caller (usually the enclosing pipeline)
// serializes access.
package echo
