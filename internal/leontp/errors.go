package leontp

import (
	"errors"
	"fmt"
)

var (
	// ErrTooShort is returned when a response cannot hold every status field
	ErrTooShort = errors.New("status response too short")

	// ErrTimeout is returned when no response arrives before the deadline
	ErrTimeout = errors.New("status query timed out")
)

// Stage identifies where a status query failed
type Stage string

const (
	StageBind    Stage = "bind"
	StageResolve Stage = "resolve"
	StageSend    Stage = "send"
	StageReceive Stage = "receive"
	StageDecode  Stage = "decode"
)

// QueryError describes a failed status query
type QueryError struct {
	Stage  Stage
	Target string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("leontp %s %s: %v", e.Stage, e.Target, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
