package whispercpp

import (
	"regexp"
	"strconv"

	"github.com/kbukum/audiotext/transcription"
)

// [00:00:01.240 --> 00:00:04.800]   Bom dia a todos.
var segmentLine = regexp.MustCompile(`^\[(\d+):(\d{2}):(\d{2})[.,](\d{3}) --> (\d+):(\d{2}):(\d{2})[.,](\d{3})\]\s?(.*)$`)

// ParseLine parses one whisper.cpp stdout segment line. The text keeps its
// surrounding whitespace; trimming is the consumer's job.
func ParseLine(line string) (transcription.Segment, bool) {
	m := segmentLine.FindStringSubmatch(line)
	if m == nil {
		return transcription.Segment{}, false
	}
	return transcription.Segment{
		Start: timestamp(m[1:5]),
		End:   timestamp(m[5:9]),
		Text:  m[9],
	}, true
}

func timestamp(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return float64(h*3600+m*60+s) + float64(ms)/1000
}
