// Package api exposes the transcription service over HTTP: uploads on
// POST /transcribe, cancellation on POST /stop, job state on GET /status
// and the landing page on GET /.
package api
