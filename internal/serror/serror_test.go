package serror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ast := assert.New(t)

	serr := New(http.StatusTeapot, "teapot", "short and stout")
	ast.Equal(http.StatusTeapot, serr.Code)
	ast.Equal("teapot", serr.Key)
	ast.Contains(serr.Error(), "short and stout")
}

func TestWrap(t *testing.T) {
	ast := assert.New(t)

	serr := Wrap(errors.New("boom"), "backup")
	ast.Equal(http.StatusInternalServerError, serr.Code)
	ast.Equal("backup", serr.Key)
	ast.Equal("boom", serr.Origin)
}

func TestWrapPassthru(t *testing.T) {
	ast := assert.New(t)

	orig := BadRequest(errors.New("boom"), "granularity")
	serr := Wrap(orig, "other")
	ast.Same(orig, serr, "an already wrapped error must pass thru untouched")
}

func TestBadRequest(t *testing.T) {
	ast := assert.New(t)

	serr := BadRequest(errors.New("boom"), "granularity", "unknown granularity")
	ast.Equal(http.StatusBadRequest, serr.Code)
	ast.Equal("granularity", serr.Key)
	ast.Equal("unknown granularity", serr.Message)
	ast.Equal("boom", serr.Origin)
}

func TestNotFound(t *testing.T) {
	ast := assert.New(t)

	serr := NotFound("rule", "4711")
	ast.Equal(http.StatusNotFound, serr.Code)
	ast.Equal("rule-not-found", serr.Key)
	ast.Contains(serr.Message, "4711")
}
