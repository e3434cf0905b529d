// Package provider defines the generic plumbing behind swappable backends.
//
// Stream[I, O] takes one input and yields a lazily pulled Iterator[O]; speech
// recognition is the Stream audiotext plugs in.
//
// Backends are built by name through a Registry of Factory functions, so the
// recognizer can be chosen from configuration:
//
//	reg := provider.NewRegistry[transcription.Recognizer]()
//	reg.RegisterFactory("whispercpp", whispercpp.Factory())
//	rec, err := reg.Create("whispercpp", cfg)
//
// StreamMiddleware wraps a Stream with cross-cutting behavior:
//
//	rec = provider.ChainStream(
//	    provider.WithStreamLogging[transcription.Request, transcription.Segment](log),
//	    provider.WithStreamTracing[transcription.Request, transcription.Segment]("job.recognize"),
//	)(rec)
package provider
