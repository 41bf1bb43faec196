package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrInvalidPayload  = fmt.Errorf("invalid event payload")
	ErrInvalidCapacity = fmt.Errorf("queue capacity must be greater than zero")
	ErrChannelClosed   = fmt.Errorf("channel closed: receiver has been dropped")
	ErrSenderReleased  = fmt.Errorf("sender handle already released")
	ErrTotalOverflow   = fmt.Errorf("running total overflow")
	ErrAlreadyStarted  = fmt.Errorf("pipeline already started")
	ErrNotStarted      = fmt.Errorf("pipeline not started")
)
