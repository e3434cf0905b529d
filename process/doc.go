// Package process runs external tools (ffmpeg, whisper.cpp) as subprocesses.
//
// Every child is placed in its own process group. Cancelling the context, or
// calling Stream.Close, sends SIGTERM to the whole group and escalates to
// SIGKILL once the grace period expires, so helper processes spawned by the
// tool die with it.
//
// Run buffers output and returns when the process exits. Start hands back a
// Stream whose stdout is read line by line while the process is running.
package process
