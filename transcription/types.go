package transcription

import (
	"fmt"
	"time"

	"github.com/kbukum/audiotext/provider"
)

// Segment is one timed unit of recognized speech.
type Segment struct {
	// Start and End are offsets into the audio, in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Text is the recognized text, untrimmed as the backend produced it.
	Text string `json:"text"`
}

// StartTime returns Start as a duration.
func (s Segment) StartTime() time.Duration { return seconds(s.Start) }

// EndTime returns End as a duration.
func (s Segment) EndTime() time.Duration { return seconds(s.End) }

func (s Segment) String() string {
	return fmt.Sprintf("[%s -> %s] %s", s.StartTime(), s.EndTime(), s.Text)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// Request asks for recognition of one waveform.
type Request struct {
	// AudioPath is a mono 16 kHz PCM WAV file.
	AudioPath string `json:"audio_path"`
	// Language is a hint such as "pt"; "auto" or empty lets the backend detect.
	Language string `json:"language,omitempty"`
}

// Recognizer produces segments for a waveform. The returned iterator must be
// closed; closing it early stops the backend.
type Recognizer = provider.Stream[Request, Segment]
