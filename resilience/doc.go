// Package resilience guards calls to remote recognizer backends.
//
// Retry re-runs an attempt with exponential backoff while the failure is
// transient. CircuitBreaker fails fast after repeated failures so a dead
// sidecar is reported without waiting on timeouts.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("whisper"))
//	segs, err := resilience.Retry(ctx, cfg, func(ctx context.Context) ([]Segment, error) {
//	    var out []Segment
//	    err := cb.Execute(func() error {
//	        var err error
//	        out, err = upload(ctx)
//	        return err
//	    })
//	    return out, err
//	})
package resilience
