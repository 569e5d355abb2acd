// Package diag schedules one-shot and recurring diagnostic requests on a CAN
// bus and routes matched responses back to the callbacks registered with
// them. Everything here runs on a single goroutine: request sends, recurring
// dispatch, response callbacks and the periodic tick hook, so callbacks can
// mutate manager state without locking.
package diag

import (
	"context"
	"errors"
	"log"
	"time"

	retry "github.com/avast/retry-go/v4"

	vi "github.com/cypoid/vi-firmware"
)

const (
	// FunctionalBroadcastID is the OBD-II "ask everyone" arbitration id.
	FunctionalBroadcastID = 0x7DF
	// ECUs answer in the 0x7E8-0x7EF window.
	responseIDLow  = 0x7E8
	responseIDHigh = 0x7EF
)

var ErrNoBus = errors.New("no bus to send request on")

// DecodeFunc turns a raw response payload for a pid into a physical value.
// Decoding is the caller's concern; a nil DecodeFunc yields zero values.
type DecodeFunc func(pid uint16, payload []byte) float64

type Manager struct {
	bus         *vi.Client
	decode      DecodeFunc
	requests    []*activeRequest
	initialized bool

	// OnStart is invoked once on the manager goroutine when Run begins,
	// after the response subscription is open.
	OnStart func(*Manager)
	// OnTick is invoked once per second on the manager goroutine while Run
	// is active.
	OnTick func(*Manager)
}

func NewManager(bus *vi.Client, decode DecodeFunc) *Manager {
	if decode == nil {
		decode = func(uint16, []byte) float64 { return 0 }
	}
	return &Manager{
		bus:    bus,
		decode: decode,
	}
}

// Bus returns the OBD-II bus handle, nil when none is configured.
func (m *Manager) Bus() *vi.Client {
	return m.bus
}

func (m *Manager) Initialized() bool {
	return m.initialized
}

func (m *Manager) SetInitialized(v bool) {
	m.initialized = v
}

// OpenRequests returns the number of registered requests still open.
func (m *Manager) OpenRequests() int {
	return len(m.requests)
}

// AddRequest registers a one-shot request and sends it immediately. The
// callback fires at most once, on the first matched response.
func (m *Manager) AddRequest(bus *vi.Client, req Request, name string, callback Callback) error {
	if bus == nil {
		return ErrNoBus
	}
	if err := m.send(bus, req); err != nil {
		return err
	}
	// a re-probe for a pid that never answered reuses the open slot
	for _, ar := range m.requests {
		if !ar.recurring && ar.Mode == req.Mode && ar.HasPID == req.HasPID && ar.PID == req.PID {
			ar.callback = callback
			return nil
		}
	}
	m.requests = append(m.requests, &activeRequest{
		Request:  req,
		name:     name,
		callback: callback,
	})
	return nil
}

// AddRecurringRequest registers a request re-sent at frequency Hz until
// Reset. Every matched response invokes handler then aux. Registering a
// recurring request for a mode+pid that already has one open is a no-op.
func (m *Manager) AddRecurringRequest(bus *vi.Client, req Request, name string, frequency float64, handler, aux Callback) error {
	if bus == nil {
		return ErrNoBus
	}
	for _, ar := range m.requests {
		if ar.recurring && ar.Mode == req.Mode && ar.HasPID == req.HasPID && ar.PID == req.PID {
			return nil
		}
	}
	m.requests = append(m.requests, &activeRequest{
		Request:   req,
		name:      name,
		recurring: true,
		clock:     NewFrequencyClock(frequency),
		handler:   handler,
		callback:  aux,
	})
	return nil
}

// Reset cancels every open request and clears the initialized state.
func (m *Manager) Reset() {
	m.requests = nil
	m.initialized = false
}

// Run owns the manager goroutine: it subscribes to the ECU response window,
// re-sends due recurring requests, dispatches matched responses and fires
// OnTick once per second. Returns when the context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	var respChan <-chan *vi.CANFrame
	if m.bus != nil {
		ids := make([]uint32, 0, responseIDHigh-responseIDLow+1)
		for id := uint32(responseIDLow); id <= responseIDHigh; id++ {
			ids = append(ids, id)
		}
		sub := m.bus.Subscribe(ctx, ids...)
		defer sub.Close()
		respChan = sub.Chan()
	}

	m.initialized = true
	if m.OnStart != nil {
		m.OnStart(m)
	}

	dispatch := time.NewTicker(50 * time.Millisecond)
	defer dispatch.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-dispatch.C:
			m.sendRecurring()
		case <-tick.C:
			if m.OnTick != nil {
				m.OnTick(m)
			}
		case frame, ok := <-respChan:
			if !ok {
				return vi.ErrResponseChannelClosed
			}
			m.handleFrame(frame)
		}
	}
}

func (m *Manager) sendRecurring() {
	for _, ar := range m.requests {
		if !ar.recurring || !ar.clock.Elapsed(true) {
			continue
		}
		if err := m.send(m.bus, ar.Request); err != nil {
			log.Printf("recurring request %s: %v", ar.name, err)
		}
	}
}

func (m *Manager) send(bus *vi.Client, req Request) error {
	data := make([]byte, 8)
	if req.HasPID {
		data[0] = 0x02
		data[1] = req.Mode
		data[2] = byte(req.PID)
	} else {
		data[0] = 0x01
		data[1] = req.Mode
	}
	return retry.Do(
		func() error { return bus.SendFrame(req.ArbitrationID, data, vi.ResponseRequired) },
		retry.Attempts(3),
		retry.Delay(5*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// handleFrame matches a mode 0x01 response frame [count, mode|0x40, pid,
// data...] against the open requests for that mode and pid. Matching is by
// pid, so an answer can never complete a request for a different parameter.
func (m *Manager) handleFrame(frame *vi.CANFrame) {
	data := frame.Data
	if len(data) < 3 {
		return
	}
	count := int(data[0])
	if data[1] < 0x40 || count < 2 || count > len(data)-1 {
		return
	}
	mode := data[1] - 0x40
	pid := uint16(data[2])
	payload := data[3 : count+1]

	// callbacks may register new requests; snapshot what we dispatch over
	open := m.requests
	for _, ar := range open {
		if ar.completed || ar.Mode != mode || !ar.HasPID || ar.PID != pid {
			continue
		}
		resp := &Response{
			ArbitrationID: frame.Identifier,
			Mode:          mode,
			PID:           pid,
			Payload:       payload,
			Value:         m.decode(pid, payload),
		}
		if ar.handler != nil {
			ar.handler(m, &ar.Request, resp)
		}
		if ar.callback != nil {
			ar.callback(m, &ar.Request, resp)
		}
		if !ar.recurring {
			ar.completed = true
		}
	}

	kept := m.requests[:0]
	for _, ar := range m.requests {
		if !ar.completed {
			kept = append(kept, ar)
		}
	}
	m.requests = kept
}
