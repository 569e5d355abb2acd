package obd2

import (
	"log"

	vi "github.com/cypoid/vi-firmware"
	"github.com/cypoid/vi-firmware/pkg/diag"
)

// SupportedPIDs derives supported pid codes from a support bitmask payload
// for the given base pid. Bit j of byte i, with bits scanned from most
// significant down, marks pid base + i*8 + j + 1: bit 7 of the first byte
// denotes a following pid, never the base itself.
func SupportedPIDs(base uint16, payload []byte) []uint16 {
	var pids []uint16
	for i := 0; i < len(payload); i++ {
		for j := 7; j >= 0; j-- {
			if payload[i]>>j&0x1 == 1 {
				pids = append(pids, base+uint16(i*8+j+1))
			}
		}
	}
	return pids
}

// requestSupportedPIDs broadcasts the five "which pids do you support" range
// queries. No-op without a bus or with recurring polling disabled.
func (o *Monitor) requestSupportedPIDs(m *diag.Manager, bus *vi.Client) {
	if bus == nil || !o.cfg.RecurringOBD2Requests {
		return
	}
	for base := uint16(0x00); base <= 0x80; base += 0x20 {
		req := diag.Request{
			ArbitrationID: diag.FunctionalBroadcastID,
			Mode:          0x01,
			HasPID:        true,
			PID:           base,
		}
		if err := m.AddRequest(bus, req, "supported_pids", o.checkSupportedPIDs); err != nil {
			log.Printf("pid support query 0x%02X: %v", base, err)
		}
	}
}

// checkSupportedPIDs registers a recurring poller for every supported pid
// found in the registry. Pids the vehicle supports but we don't know how to
// interpret are silently skipped. Each poller forwards telemetry on its
// normal handler and feeds the ignition detector as auxiliary callback.
func (o *Monitor) checkSupportedPIDs(m *diag.Manager, req *diag.Request, resp *diag.Response) {
	if m.Bus() == nil || !o.cfg.RecurringOBD2Requests {
		return
	}
	for _, pid := range SupportedPIDs(resp.PID, resp.Payload) {
		desc, found := Find(pid)
		if !found {
			continue
		}
		log.Printf("vehicle supports pid 0x%02X (%s)", pid, desc.Name)
		poll := diag.Request{
			ArbitrationID: diag.FunctionalBroadcastID,
			Mode:          0x01,
			HasPID:        true,
			PID:           pid,
		}
		if err := m.AddRecurringRequest(m.Bus(), poll, desc.Name, desc.Frequency, o.handleTelemetry, o.checkIgnitionStatus); err != nil {
			log.Printf("recurring poller %s: %v", desc.Name, err)
		}
	}
}

// handleTelemetry forwards a decoded recurring poll to the host pipeline.
func (o *Monitor) handleTelemetry(m *diag.Manager, req *diag.Request, resp *diag.Response) {
	if desc, ok := Find(resp.PID); ok {
		o.publish(desc.Name, resp.Value)
	}
}
