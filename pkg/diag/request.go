package diag

// Request describes a diagnostic request as it goes out on the bus.
type Request struct {
	ArbitrationID uint32
	Mode          byte
	HasPID        bool
	PID           uint16
}

// Response is a matched, decoded answer to an open request. Payload is only
// valid for the duration of the callback; callbacks must not retain it.
type Response struct {
	ArbitrationID uint32
	Mode          byte
	PID           uint16
	Payload       []byte
	Value         float64
}

// Callback receives every response matched to the request it was registered
// with. Callbacks run on the manager's goroutine.
type Callback func(m *Manager, req *Request, resp *Response)

type activeRequest struct {
	Request
	name      string
	recurring bool
	clock     *FrequencyClock
	handler   Callback // telemetry handler, recurring requests only
	callback  Callback // completion or auxiliary callback
	completed bool
}
