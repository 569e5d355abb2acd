package vi

import (
	"context"
	"math"
	"time"
)

const (
	simRequestID  = 0x7DF
	simResponseID = 0x7E8
)

func init() {
	if err := RegisterAdapter(&AdapterInfo{
		Name:               "sim",
		Description:        "Simulated vehicle ECU",
		RequiresSerialPort: false,
		New:                NewSim,
	}); err != nil {
		panic(err)
	}
}

// Sim is an in-process vehicle: a single ECU answering OBD-II mode 0x01
// requests on the functional broadcast id. The engine "runs" from Open until
// IgnitionAfter elapses, after which engine speed and vehicle speed read zero
// and, once CutBusAfter has elapsed as well, the ECU stops answering entirely.
type Sim struct {
	*BaseAdapter
	// IgnitionAfter > 0 cuts the ignition that long after Open.
	IgnitionAfter time.Duration
	// CutBusAfter > 0 silences the ECU that long after Open.
	CutBusAfter time.Duration

	start     time.Time
	supported map[uint16]bool
}

func NewSim(cfg *AdapterConfig) (Adapter, error) {
	return &Sim{
		BaseAdapter: NewBaseAdapter("sim", cfg),
		supported: map[uint16]bool{
			0x04: true, // engine load
			0x05: true, // coolant temperature
			0x0B: true, // intake manifold pressure
			0x0C: true, // engine speed
			0x0D: true, // vehicle speed
			0x0F: true, // intake air temperature
			0x11: true, // throttle position
			0x33: true, // barometric pressure
		},
	}, nil
}

func (a *Sim) Open(ctx context.Context) error {
	a.start = time.Now()
	go a.run(ctx)
	return nil
}

func (a *Sim) Close() error {
	a.BaseAdapter.Close()
	return nil
}

func (a *Sim) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.closeChan:
			return
		case frame := <-a.sendChan:
			if resp := a.respond(frame); resp != nil {
				select {
				case a.recvChan <- resp:
				default:
					a.Error(ErrDroppedFrame)
				}
			}
		}
	}
}

func (a *Sim) ignitionOn() bool {
	return a.IgnitionAfter <= 0 || time.Since(a.start) < a.IgnitionAfter
}

func (a *Sim) busAlive() bool {
	return a.CutBusAfter <= 0 || time.Since(a.start) < a.CutBusAfter
}

func (a *Sim) respond(frame *CANFrame) *CANFrame {
	if !a.busAlive() {
		return nil
	}
	if frame.Identifier != simRequestID || len(frame.Data) < 3 {
		return nil
	}
	// [count, mode, pid, ...]
	if frame.Data[0] < 2 || frame.Data[1] != 0x01 {
		return nil
	}
	pid := uint16(frame.Data[2])
	var payload []byte
	switch {
	case pid%0x20 == 0 && pid <= 0x80:
		payload = a.supportMask(pid)
	default:
		var ok bool
		payload, ok = a.value(pid)
		if !ok {
			return nil
		}
	}
	data := make([]byte, 0, 8)
	data = append(data, byte(2+len(payload)), 0x41, byte(pid))
	data = append(data, payload...)
	for len(data) < 8 {
		data = append(data, 0x00)
	}
	return NewFrame(simResponseID, data, Incoming)
}

// supportMask encodes which of the 32 pids after base this ECU answers.
// Bit j of byte i marks pid base + i*8 + j + 1.
func (a *Sim) supportMask(base uint16) []byte {
	mask := make([]byte, 4)
	for pid := range a.supported {
		if pid <= base || pid > base+0x20 {
			continue
		}
		n := pid - base - 1
		mask[n/8] |= 1 << (n % 8)
	}
	// flag the next range while anything beyond it is supported
	for pid := range a.supported {
		if pid > base+0x20 {
			mask[3] |= 1 << 7
			break
		}
	}
	return mask
}

func (a *Sim) value(pid uint16) ([]byte, bool) {
	if !a.supported[pid] {
		return nil, false
	}
	running := a.ignitionOn()
	t := time.Since(a.start).Seconds()
	switch pid {
	case 0x04: // engine load, percent
		return []byte{byte(80 + 40*math.Sin(t/3))}, true
	case 0x05: // coolant temperature, offset -40
		return []byte{130}, true
	case 0x0B: // intake manifold pressure, kPa
		return []byte{101}, true
	case 0x0C: // engine speed, rpm*4 over two bytes
		if !running {
			return []byte{0, 0}, true
		}
		rpm := 800 + 400*math.Sin(t/5)
		raw := uint16(rpm * 4)
		return []byte{byte(raw >> 8), byte(raw)}, true
	case 0x0D: // vehicle speed, km/h
		if !running {
			return []byte{0}, true
		}
		return []byte{byte(30 + 20*math.Sin(t/7))}, true
	case 0x0F: // intake air temperature, offset -40
		return []byte{60}, true
	case 0x11: // throttle position, percent
		return []byte{byte(40 + 30*math.Sin(t/3))}, true
	case 0x33: // barometric pressure, kPa
		return []byte{99}, true
	default:
		return nil, false
	}
}
