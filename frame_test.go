package vi

import "testing"

func TestNewFrameCopiesData(t *testing.T) {
	src := []byte{0x02, 0x01, 0x0C}
	frame := NewFrame(0x7DF, src, ResponseRequired)
	src[0] = 0xFF
	if frame.Data[0] != 0x02 {
		t.Fatal("frame aliases the caller's slice")
	}
	if frame.DLC() != 3 {
		t.Fatalf("dlc %d, want 3", frame.DLC())
	}
	if frame.Extended {
		t.Fatal("11 bit frame marked extended")
	}
}

func TestNewExtendedFrame(t *testing.T) {
	frame := NewExtendedFrame(0x18DB33F1, []byte{0x02, 0x01, 0x0C}, ResponseRequired)
	if !frame.Extended {
		t.Fatal("29 bit frame not marked extended")
	}
}
