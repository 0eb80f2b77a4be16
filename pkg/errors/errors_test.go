package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := NewAppError(ErrUpstream, "airtable request failed", errors.New("connection reset"))

	wrapped := Wrap(inner, "fetch contacts")

	assert.Equal(t, ErrUpstream, CodeOf(wrapped))
	assert.Equal(t, "fetch contacts: airtable request failed: connection reset", wrapped.Error())
	assert.True(t, Is(wrapped, inner))
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
	assert.Equal(t, ErrInternal, CodeOf(Wrap(errors.New("boom"), "ctx")))
}

func TestCodeFromHTTPStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusNotFound:            ErrNotFound,
		http.StatusUnprocessableEntity: ErrInvalidArgument,
		http.StatusUnauthorized:        ErrUnauthenticated,
		http.StatusForbidden:           ErrUnauthorized,
		http.StatusTooManyRequests:     ErrRateLimited,
		http.StatusServiceUnavailable:  ErrUpstream,
	}
	for status, want := range cases {
		assert.Equal(t, want, CodeFromHTTPStatus(status), "status %d", status)
	}
}

func TestToHTTPError(t *testing.T) {
	httpErr := ToHTTPError(NewAppError(ErrUpstream, "stripe down", nil))
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)

	assert.Equal(t, http.StatusInternalServerError, ToHTTPError(errors.New("x")).Code)
	assert.Nil(t, ToHTTPError(nil))
}

func TestLogError_AttachesCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogError(logger, NewAppError(ErrInvalidArgument, "missing amount", nil), "price creation failed", zap.String("record_id", "rec1"))
	LogError(logger, nil, "ignored")
	LogError(logger, errors.New("connection reset"), "write-back failed")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "price creation failed", entries[0].Message)
		assert.Equal(t, ErrInvalidArgument, ctx["error_code"])
		assert.Equal(t, "rec1", ctx["record_id"])
		assert.Equal(t, ErrInternal, entries[1].ContextMap()["error_code"])
	}
}
