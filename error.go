package vi

import "errors"

var (
	ErrNilAdapter            = errors.New("adapter is nil")
	ErrDroppedFrame          = errors.New("adapter send channel full")
	ErrResponseChannelClosed = errors.New("response channel closed")
)
