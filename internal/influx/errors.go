package influx

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the sink closes without sending anything
var ErrEmptyResponse = errors.New("empty response")

// Stage identifies where a push failed on the transport side
type Stage string

const (
	StageConnect       Stage = "connect"
	StageWrite         Stage = "write"
	StageRead          Stage = "read"
	StageEmptyResponse Stage = "empty-response"
)

// TransportError reports a push that never got a usable reply
type TransportError struct {
	Stage Stage
	Addr  string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("influxdb %s %s: %v", e.Stage, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError reports a reply whose status line is neither 200 nor 204
type RemoteError struct {
	StatusLine string
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("influxdb rejected write: %s", e.StatusLine)
	}
	return fmt.Sprintf("influxdb rejected write: %s: %s", e.StatusLine, e.Detail)
}

// Outcome summarises a push result
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRemoteError
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRemoteError:
		return "remote_error"
	default:
		return "transport_error"
	}
}

// Classify maps the error returned by a push to its Outcome. Errors that are
// neither RemoteError nor TransportError count as transport failures.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return OutcomeRemoteError
	}
	return OutcomeTransportError
}
