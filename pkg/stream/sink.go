// Package stream pushes encoded vehicle messages out to the host over
// whatever transports are configured.
package stream

import (
	"encoding/binary"
	"fmt"
	"log"

	"go.bug.st/serial"

	"github.com/cypoid/vi-firmware/pkg/payload"
)

// Sink delivers one encoded vehicle message to a host transport.
type Sink interface {
	Name() string
	Publish(data []byte) error
	Close() error
}

// Publisher fans each message out to every sink. Encode failures and sink
// errors drop the message instead of propagating; telemetry is best effort.
type Publisher struct {
	sinks []Sink
}

func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

func (p *Publisher) Publish(msg *payload.VehicleMessage) {
	data, n := payload.Serialize(msg)
	if n == 0 {
		return
	}
	for _, s := range p.sinks {
		if err := s.Publish(data); err != nil {
			log.Printf("%s sink: %v", s.Name(), err)
		}
	}
}

func (p *Publisher) Close() {
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			log.Printf("closing %s sink: %v", s.Name(), err)
		}
	}
}

// UARTSink writes messages to a serial port, each framed with a 2 byte
// big-endian length prefix.
type UARTSink struct {
	port serial.Port
}

func NewUARTSink(portPath string, baudrate int) (*UARTSink, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open uart port %q: %w", portPath, err)
	}
	return &UARTSink{port: port}, nil
}

func (u *UARTSink) Name() string { return "uart" }

func (u *UARTSink) Publish(data []byte) error {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(data)))
	if _, err := u.port.Write(hdr[:]); err != nil {
		return err
	}
	_, err := u.port.Write(data)
	return err
}

func (u *UARTSink) Close() error {
	if u.port != nil {
		err := u.port.Close()
		u.port = nil
		return err
	}
	return nil
}
