package playback

import "testing"

func TestIsWAV(t *testing.T) {
	wavHdr := append([]byte("RIFF"), 0, 0, 0, 0)
	wavHdr = append(wavHdr, []byte("WAVE")...)
	if !IsWAV(wavHdr) {
		t.Fatalf("expected wav header to be detected")
	}
	if IsWAV([]byte("ID3...mpeg")) {
		t.Fatalf("mpeg payload must not be detected as wav")
	}
	if IsWAV([]byte("RI")) {
		t.Fatalf("short payload must not be detected as wav")
	}
}
