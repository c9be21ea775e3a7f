package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CallbackID correlates an asynchronous request with its reply.
type CallbackID int64

// PushCallbackID marks an unsolicited host-to-script message.
const PushCallbackID CallbackID = -1

// IsPush reports whether id is the push sentinel.
func (id CallbackID) IsPush() bool {
	return id == PushCallbackID
}

// InvocationMode distinguishes the two call shapes.
type InvocationMode string

const (
	InvocationSync  InvocationMode = "sync"
	InvocationAsync InvocationMode = "async"
)

// InvocationRequest is a script-initiated call of a bound host function.
type InvocationRequest struct {
	CallbackID CallbackID
	Function   string
	Params     json.RawMessage
}

// ErrorCode classifies a failed invocation.
type ErrorCode string

const (
	ErrorNotFound       ErrorCode = "not_found"
	ErrorInvalidParams  ErrorCode = "invalid_params"
	ErrorCallableFailed ErrorCode = "callable_failed"
	ErrorUnavailable    ErrorCode = "unavailable"
)

// ReplyError is the error half of an InvocationReply.
type ReplyError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	cause error
}

// NewReplyError builds a ReplyError wrapping cause.
func NewReplyError(code ErrorCode, cause error) *ReplyError {
	msg := string(code)
	if cause != nil {
		msg = cause.Error()
	}
	return &ReplyError{Code: code, Message: msg, cause: cause}
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ReplyError) Unwrap() error {
	return e.cause
}

// AsReplyError maps err onto a ReplyError, classifying unknown errors as
// callable failures.
func AsReplyError(err error) *ReplyError {
	if err == nil {
		return nil
	}
	var re *ReplyError
	if errors.As(err, &re) {
		return re
	}
	return NewReplyError(ErrorCallableFailed, err)
}

// InvocationReply is the correlated answer to an asynchronous request, or a
// host push when CallbackID is PushCallbackID.
type InvocationReply struct {
	CallbackID CallbackID  `json:"callback_id"`
	Result     any         `json:"result"`
	Error      *ReplyError `json:"error,omitempty"`
}

// NewPush wraps value as an unsolicited host message.
func NewPush(value any) InvocationReply {
	return InvocationReply{CallbackID: PushCallbackID, Result: value}
}

// Encode serializes the reply into the envelope delivered to script.
func (r InvocationReply) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode reply %d: %w", r.CallbackID, err)
	}
	return string(data), nil
}

// InvocationStatus is the outcome recorded for an invocation.
type InvocationStatus string

const (
	StatusOK             InvocationStatus = "ok"
	StatusNotFound       InvocationStatus = "not_found"
	StatusInvalidParams  InvocationStatus = "invalid_params"
	StatusCallableFailed InvocationStatus = "callable_failed"
	StatusUnavailable    InvocationStatus = "unavailable"
)

// StatusFromError derives the status of a finished invocation.
func StatusFromError(err error) InvocationStatus {
	if err == nil {
		return StatusOK
	}
	return InvocationStatus(AsReplyError(err).Code)
}

// CallRecord is one journaled invocation.
type CallRecord struct {
	ID         int64
	SessionID  SessionID
	ViewID     uint64
	CallbackID CallbackID
	Function   string
	Mode       InvocationMode
	Status     InvocationStatus
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}
