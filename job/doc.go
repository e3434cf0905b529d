// Package job runs at most one transcription at a time.
//
// A Gate admits a single job and exposes its cancellation Signal to stop
// requests. The Runner pulls segments from a recognizer and checks the
// signal between segments, so a stopped job returns the text gathered so
// far marked as aborted. The Controller ties both together for one upload:
// admission, temp files, conversion, a worker goroutine for recognition,
// and release of the slot on every exit path.
package job
