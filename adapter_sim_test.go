package vi

import (
	"context"
	"testing"
	"time"
)

func obdRequest(pid byte) *CANFrame {
	return NewFrame(simRequestID, []byte{0x02, 0x01, pid, 0, 0, 0, 0, 0}, ResponseRequired)
}

func newSim(t *testing.T) *Sim {
	t.Helper()
	adapter, err := NewSim(&AdapterConfig{})
	if err != nil {
		t.Fatal(err)
	}
	sim := adapter.(*Sim)
	sim.start = time.Now()
	return sim
}

func TestSimRespond(t *testing.T) {
	sim := newSim(t)

	tests := []struct {
		name  string
		frame *CANFrame
		want  bool
	}{
		{"engine speed", obdRequest(0x0C), true},
		{"support range query", obdRequest(0x00), true},
		{"unsupported pid", obdRequest(0x1F), false},
		{"wrong arbitration id", NewFrame(0x123, []byte{0x02, 0x01, 0x0C, 0, 0, 0, 0, 0}, ResponseRequired), false},
		{"wrong mode", NewFrame(simRequestID, []byte{0x02, 0x09, 0x02, 0, 0, 0, 0, 0}, ResponseRequired), false},
		{"truncated", NewFrame(simRequestID, []byte{0x02, 0x01}, ResponseRequired), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := sim.respond(tt.frame)
			if (resp != nil) != tt.want {
				t.Fatalf("respond = %v, want answer: %v", resp, tt.want)
			}
			if resp == nil {
				return
			}
			if resp.Identifier != simResponseID {
				t.Errorf("answered on 0x%02X, want 0x%02X", resp.Identifier, uint32(simResponseID))
			}
			if resp.DLC() != 8 {
				t.Errorf("dlc %d, want 8", resp.DLC())
			}
			if resp.Data[1] != 0x41 {
				t.Errorf("mode byte 0x%02X, want 0x41", resp.Data[1])
			}
			if resp.Data[2] != tt.frame.Data[2] {
				t.Errorf("pid 0x%02X, want 0x%02X", resp.Data[2], tt.frame.Data[2])
			}
			count := int(resp.Data[0])
			if count < 2 || count > 7 {
				t.Errorf("count byte %d out of range", count)
			}
		})
	}
}

func TestSimSupportMask(t *testing.T) {
	sim := newSim(t)

	tests := []struct {
		base uint16
		want [4]byte
	}{
		// pids 4, 5, 0xB, 0xC, 0xD, 0xF and 0x11, with the next-range flag
		// set since 0x33 lies beyond this window
		{0x00, [4]byte{0x18, 0x5C, 0x01, 0x80}},
		// only 0x33 in this window and nothing beyond
		{0x20, [4]byte{0x00, 0x00, 0x04, 0x00}},
		{0x40, [4]byte{0x00, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		mask := sim.supportMask(tt.base)
		if len(mask) != 4 {
			t.Fatalf("mask length %d, want 4", len(mask))
		}
		for i := range tt.want {
			if mask[i] != tt.want[i] {
				t.Errorf("base 0x%02X mask %02X, want %02X", tt.base, mask, tt.want)
				break
			}
		}
	}
}

func TestSimIgnitionCut(t *testing.T) {
	sim := newSim(t)
	sim.IgnitionAfter = time.Millisecond
	sim.start = time.Now().Add(-time.Second)

	resp := sim.respond(obdRequest(0x0C))
	if resp == nil {
		t.Fatal("ECU stopped answering, only the ignition should be off")
	}
	if resp.Data[3] != 0 || resp.Data[4] != 0 {
		t.Errorf("engine speed %02X %02X, want zero with ignition off", resp.Data[3], resp.Data[4])
	}

	resp = sim.respond(obdRequest(0x0D))
	if resp == nil {
		t.Fatal("ECU stopped answering, only the ignition should be off")
	}
	if resp.Data[3] != 0 {
		t.Errorf("vehicle speed %02X, want zero with ignition off", resp.Data[3])
	}
}

func TestSimBusCut(t *testing.T) {
	sim := newSim(t)
	sim.CutBusAfter = time.Millisecond
	sim.start = time.Now().Add(-time.Second)

	if resp := sim.respond(obdRequest(0x0C)); resp != nil {
		t.Fatalf("got %v from a silenced ECU", resp)
	}
}

func TestClientRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adapter, err := NewAdapter("sim", &AdapterConfig{})
	if err != nil {
		t.Fatal(err)
	}
	client, err := New(ctx, adapter)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	sub := client.Subscribe(ctx, simResponseID)
	defer sub.Close()
	filtered := client.Subscribe(ctx, 0x123)
	defer filtered.Close()

	if err := client.SendFrame(simRequestID, []byte{0x02, 0x01, 0x0C, 0, 0, 0, 0, 0}, ResponseRequired); err != nil {
		t.Fatal(err)
	}

	frame, err := sub.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Identifier != simResponseID {
		t.Fatalf("response on 0x%02X", frame.Identifier)
	}
	if frame.Data[1] != 0x41 || frame.Data[2] != 0x0C {
		t.Fatalf("unexpected response data % 02X", frame.Data)
	}

	// the response must not leak into a subscription for another id
	select {
	case f := <-filtered.Chan():
		t.Fatalf("filtered subscriber received 0x%02X", f.Identifier)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListAdaptersIncludesSim(t *testing.T) {
	for _, name := range ListAdapterNames() {
		if name == "sim" {
			return
		}
	}
	t.Fatal("sim adapter not registered")
}
