package serror

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Service the name of this service, set once at startup
var Service string

// Serr a service error, the json rendering of every error leaving the api
type Serr struct {
	Code    int    `json:"code"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
	Origin  string `json:"origin,omitempty"`
	Service string `json:"service,omitempty"`
}

func (e *Serr) Error() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%d: %s", e.Code, e.Message)
	}
	return string(data)
}

// New creates a new service error
func New(code int, key, msg string) *Serr {
	return &Serr{
		Code:    code,
		Key:     key,
		Message: msg,
		Service: Service,
	}
}

// Wrap wraps an error into a service error, already wrapped errors pass thru
func Wrap(err error, key string) *Serr {
	if serr, ok := err.(*Serr); ok {
		return serr
	}
	serr := New(http.StatusInternalServerError, key, http.StatusText(http.StatusInternalServerError))
	serr.Origin = err.Error()
	return serr
}

// BadRequest a 400 error, key and message are optional
func BadRequest(err error, keymsg ...string) *Serr {
	serr := build(http.StatusBadRequest, keymsg...)
	if err != nil {
		serr.Origin = err.Error()
	}
	return serr
}

// NotFound a 404 error for a named object
func NotFound(kind, id string, errs ...error) *Serr {
	serr := New(http.StatusNotFound, kind+"-not-found", fmt.Sprintf("%s with id \"%s\" not found", kind, id))
	for _, err := range errs {
		if err != nil {
			serr.Origin = err.Error()
		}
	}
	return serr
}

// InternalServerError a 500 error
func InternalServerError(err error, keymsg ...string) *Serr {
	serr := build(http.StatusInternalServerError, keymsg...)
	if err != nil {
		serr.Origin = err.Error()
	}
	return serr
}

func build(code int, keymsg ...string) *Serr {
	serr := New(code, "", http.StatusText(code))
	if len(keymsg) > 0 {
		serr.Key = keymsg[0]
	}
	if len(keymsg) > 1 {
		serr.Message = keymsg[1]
	}
	return serr
}
