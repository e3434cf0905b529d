package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "reuniao.mp3", "reuniao.mp3"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\ana\voz.ogg`, "voz.ogg"},
		{"spaces and accents", "gravação final.m4a", "grava__o_final.m4a"},
		{"hidden file", ".bashrc", "bashrc"},
		{"control chars", "a\x00b\nc.wav", "abc.wav"},
		{"empty", "", "upload"},
		{"only dots", "...", "upload"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFilename(tc.in, "upload"); got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
