package service

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies why a provider could not produce a forecast.
type ErrorKind int

const (
	InvalidLocation ErrorKind = iota + 1
	InvalidAPIKey
	FailedConnection
	InvalidJSON
)

var errorKindNames = map[ErrorKind]string{
	InvalidLocation:  "InvalidLocation",
	InvalidAPIKey:    "InvalidApiKey",
	FailedConnection: "FailedConnection",
	InvalidJSON:      "InvalidJSON",
}

var errorKindDescriptions = map[ErrorKind]string{
	InvalidLocation:  "Requested location is invalid or unknown.",
	InvalidAPIKey:    "Api key for the given data source is invalid.",
	FailedConnection: "Failed connecting to the data source.",
	InvalidJSON:      "Could not parse returned JSON.",
}

// ErrCredentialNotConfigured is the cause attached to InvalidApiKey errors produced
// without contacting the backend because no key was supplied.
var ErrCredentialNotConfigured = errors.New("api key not configured")

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Description is the fixed human readable text for k.
func (k ErrorKind) Description() string {
	return errorKindDescriptions[k]
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	if _, ok := errorKindNames[k]; !ok {
		return nil, fmt.Errorf("unknown error kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range errorKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(text))
}

// ProviderError attributes an ErrorKind to the provider that produced it.
type ProviderError struct {
	Origin string
	Kind   ErrorKind
	cause  error
}

func NewProviderError(origin string, kind ErrorKind, cause error) *ProviderError {
	return &ProviderError{Origin: origin, Kind: kind, cause: cause}
}

func (e *ProviderError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Origin, e.Kind.Description(), e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Origin, e.Kind.Description())
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Is matches another *ProviderError with the same origin and kind.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Origin == t.Origin && e.Kind == t.Kind
}

type providerErrorJSON struct {
	Origin string    `json:"origin"`
	Kind   ErrorKind `json:"kind"`
}

func (e ProviderError) MarshalJSON() ([]byte, error) {
	return json.Marshal(providerErrorJSON{Origin: e.Origin, Kind: e.Kind})
}

func (e *ProviderError) UnmarshalJSON(data []byte) error {
	var raw providerErrorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ProviderError{Origin: raw.Origin, Kind: raw.Kind}
	return nil
}

// AsProviderError normalizes any error returned by a provider. Errors that are not
// already a *ProviderError (cancellation, deadline) are transport failures from
// the caller's point of view and become FailedConnection.
func AsProviderError(origin string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	return NewProviderError(origin, FailedConnection, err)
}
