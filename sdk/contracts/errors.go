package contracts

import "errors"

var (
	// ErrDeviceUnavailable is returned when a control or capture device cannot be acquired.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrCapture is returned when a capture read fails (overflow, disconnect, closed session).
	ErrCapture = errors.New("capture error")
	// ErrControlChannel is returned when a control message cannot be delivered.
	ErrControlChannel = errors.New("control channel error")
)
