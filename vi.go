// Package vi is the CAN side of a vehicle interface: adapters produce and
// consume raw CAN frames and the Client fans incoming traffic out to
// subscribers filtered by arbitration id.
package vi

import (
	"context"
)

type Client struct {
	fh      *handler
	adapter Adapter
}

// New opens the adapter and starts the frame fanout.
func New(ctx context.Context, adapter Adapter) (*Client, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if err := adapter.Open(ctx); err != nil {
		return nil, err
	}
	c := &Client{
		fh:      newHandler(adapter),
		adapter: adapter,
	}
	go c.fh.run(ctx)
	return c, nil
}

func (c *Client) Adapter() Adapter {
	return c.adapter
}

func (c *Client) Close() error {
	c.fh.Close()
	return c.adapter.Close()
}

// Send a CAN frame
func (c *Client) Send(frame *CANFrame) error {
	select {
	case c.adapter.Send() <- frame:
		return nil
	default:
		return ErrDroppedFrame
	}
}

// SendFrame is a shortcut to send a standard 11bit frame
func (c *Client) SendFrame(identifier uint32, data []byte, t CANFrameType) error {
	return c.Send(NewFrame(identifier, data, t))
}

// Subscribe returns a subscriber that receives frames matching the given
// identifiers. No identifiers means all frames.
func (c *Client) Subscribe(ctx context.Context, identifiers ...uint32) *Subscriber {
	sub := &Subscriber{
		cl:           c,
		identifiers:  make(map[uint32]struct{}, len(identifiers)),
		filterCount:  len(identifiers),
		responseChan: make(chan *CANFrame, 40),
	}
	for _, id := range identifiers {
		sub.identifiers[id] = struct{}{}
	}
	c.fh.registerSubscriber(sub)
	return sub
}
