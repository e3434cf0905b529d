// Package audio normalizes uploaded audio into the waveform format the
// recognizers expect: mono, 16 kHz, 16-bit PCM WAV.
package audio
