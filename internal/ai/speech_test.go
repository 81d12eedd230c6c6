package ai

import (
	"encoding/binary"
	"testing"
)

func TestPCMToWAV_Header(t *testing.T) {
	pcm := make([]byte, 4800) // 100ms of silence at 24kHz mono 16-bit
	wav := pcmToWAV(pcm)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("Missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("RIFF chunk size = %d, want %d", got, 36+len(pcm))
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Errorf("Sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("Channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Errorf("Bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("Data chunk size = %d, want %d", got, len(pcm))
	}
}

func TestPCMToWAV_EmptyInput(t *testing.T) {
	wav := pcmToWAV(nil)
	if len(wav) != 44 {
		t.Fatalf("Expected bare 44-byte header, got %d bytes", len(wav))
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 0 {
		t.Errorf("Data chunk size = %d, want 0", got)
	}
}
