package process

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedResponse is returned when a reply matches no known variant.
var ErrUnrecognizedResponse = errors.New("unrecognized response")

// Kind identifies a response variant.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindPending Kind = "pending"
)

// Response is one of Success, Error or Pending.
type Response interface {
	Kind() Kind
	isResponse()
}

// Success carries the reply payload.
type Success struct {
	Data string
	Tags []Tag
}

// Error is a reply the process marked as failed.
type Error struct {
	Code    string
	Message string
}

// Pending means the work is accepted but not done; poll with SessionID.
type Pending struct {
	SessionID string
}

func (Success) Kind() Kind { return KindSuccess }
func (Error) Kind() Kind   { return KindError }
func (Pending) Kind() Kind { return KindPending }

func (Success) isResponse() {}
func (Error) isResponse()   {}
func (Pending) isResponse() {}

func (e Error) Error() string {
	if e.Message == "" {
		return "process error " + e.Code
	}
	return fmt.Sprintf("process error %s: %s", e.Code, e.Message)
}

// Decode maps reply tags and data to a response variant.
//
// Precedence: an Error status or Error tag wins, then an explicit Pending
// status, then Success (Status=Success or an Action ending in -Success), then
// a bare Session-Id which is treated as Pending.
func Decode(tags []Tag, data string) (Response, error) {
	status := Value(tags, "Status")
	errText, hasErr := Lookup(tags, "Error")

	if strings.EqualFold(status, "Error") || hasErr {
		code := Value(tags, "Code")
		if code == "" {
			code = "unknown"
		}
		msg := errText
		if msg == "" {
			msg = data
		}
		return Error{Code: code, Message: msg}, nil
	}

	sessionID, hasSession := Lookup(tags, "Session-Id")
	if strings.EqualFold(status, "Pending") {
		return Pending{SessionID: sessionID}, nil
	}

	action := Value(tags, "Action")
	if strings.EqualFold(status, "Success") || strings.HasSuffix(action, "-Success") {
		return Success{Data: data, Tags: tags}, nil
	}

	if hasSession && sessionID != "" {
		return Pending{SessionID: sessionID}, nil
	}

	return nil, fmt.Errorf("%w: status=%q action=%q", ErrUnrecognizedResponse, status, action)
}
