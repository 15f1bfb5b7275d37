package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies an Outcome.
type Kind int

const (
	// KindOK is a success discriminator from the service.
	KindOK Kind = iota
	// KindDomain is an in-band failure reported by the service.
	KindDomain
	// KindTransport is a network failure or an unreadable response.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindDomain:
		return "domain"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrMalformed is wrapped by transport outcomes whose body could not be read as an envelope.
var ErrMalformed = errors.New("malformed response")

// Outcome is the normalized result of one remote call. Callers branch on OK
// (or Kind) only; the service's envelope shape never leaks past this type.
type Outcome struct {
	OK      bool
	Kind    Kind
	Data    json.RawMessage
	Message string
	// HTTPStatus is informational; it never decides success.
	HTTPStatus int
	Err        error
}

// Success builds an ok outcome.
func Success(data json.RawMessage, message string) Outcome {
	return Outcome{OK: true, Kind: KindOK, Data: data, Message: message}
}

// Failure builds a domain failure outcome.
func Failure(message string) Outcome {
	return Outcome{Kind: KindDomain, Message: message}
}

// TransportFailure builds a transport failure outcome.
func TransportFailure(err error) Outcome {
	return Outcome{Kind: KindTransport, Err: err, Message: err.Error()}
}

// HasData reports whether the success payload is present and not null.
func (o Outcome) HasData() bool {
	d := bytes.TrimSpace(o.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// envelope covers both shapes the service emits: {success: bool} on auth
// endpoints and {status: "success"} on resource endpoints.
type envelope struct {
	Success *bool           `json:"success"`
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Normalize turns a response body into an Outcome.
func Normalize(body []byte, httpStatus int) Outcome {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		o := TransportFailure(fmt.Errorf("%w: %v", ErrMalformed, err))
		o.HTTPStatus = httpStatus
		return o
	}
	ok, known := discriminator(env)
	var o Outcome
	switch {
	case !known && env.Message == "":
		o = TransportFailure(fmt.Errorf("%w: no status discriminator", ErrMalformed))
	case !known:
		// e.g. a gateway 401 body carrying only a message
		o = Failure(env.Message)
	case ok:
		o = Success(env.Data, env.Message)
	default:
		o = Failure(env.Message)
	}
	o.HTTPStatus = httpStatus
	return o
}

func discriminator(env envelope) (ok, known bool) {
	if env.Success != nil {
		return *env.Success, true
	}
	if len(env.Status) > 0 {
		var s string
		if err := json.Unmarshal(env.Status, &s); err != nil {
			return false, true
		}
		return s == "success", true
	}
	return false, false
}

// Decode unmarshals the success payload into T. A payload that does not fit
// T is reported as ErrMalformed.
func Decode[T any](o Outcome) (T, error) {
	var v T
	if !o.OK {
		return v, fmt.Errorf("decode %s outcome: %s", o.Kind, o.Message)
	}
	if !o.HasData() {
		return v, fmt.Errorf("%w: empty data", ErrMalformed)
	}
	if err := json.Unmarshal(o.Data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}
