package avmux

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrBufferLimit is returned by SampleBuffer.Ensure when a growth
	// request exceeds the configured limit. Stands in for allocation
	// failure, which Go cannot observe directly.
	ErrBufferLimit = errors.New("sample buffer limit exceeded")
	// ErrPipelineDone is returned when a pipeline is stepped after it
	// reached end of stream.
	ErrPipelineDone = errors.New("pipeline already drained")
)

// FailureKind classifies an unrecoverable run failure. Every kind aborts the
// whole run; there is no retry at this layer.
type FailureKind int

const (
	FailureSetup    FailureKind = iota // missing encoder, stream/frame/converter init
	FailureEncode                      // encode or conversion step reported an error
	FailureWrite                       // container append failed
	FailureResource                    // scratch buffer growth refused
)

func (k FailureKind) String() string {
	switch k {
	case FailureSetup:
		return "setup"
	case FailureEncode:
		return "encode"
	case FailureWrite:
		return "write"
	case FailureResource:
		return "resource"
	default:
		return "unknown"
	}
}

// RunError is a classified fatal failure propagated out of Muxer.Run.
type RunError struct {
	Kind FailureKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Failure extracts the failure kind from an error returned by Muxer.Run.
func Failure(err error) (FailureKind, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

func failSetup(err error) error    { return &RunError{Kind: FailureSetup, Err: err} }
func failEncode(err error) error   { return &RunError{Kind: FailureEncode, Err: err} }
func failWrite(err error) error    { return &RunError{Kind: FailureWrite, Err: err} }
func failResource(err error) error { return &RunError{Kind: FailureResource, Err: err} }
