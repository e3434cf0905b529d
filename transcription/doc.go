// Package transcription defines the speech recognition contract used by the
// job runner.
//
// A Recognizer turns a normalized waveform into a lazily produced sequence of
// timed Segments. Nothing beyond the segment the caller is about to consume
// is required to exist, which is what lets a running job stop between
// segments.
//
// # Backends
//
//   - transcription/whispercpp: whisper.cpp CLI, segments streamed from stdout
//   - transcription/whisper: faster-whisper HTTP sidecar
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whispercpp.ProviderName, whispercpp.Factory())
//	rec, err := transcription.Build(ctx, reg, cfg, log)
//	it, err := rec.Execute(ctx, transcription.Request{AudioPath: wav, Language: "pt"})
//	defer it.Close()
package transcription
