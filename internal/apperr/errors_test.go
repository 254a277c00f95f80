package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid date filter", inner)

	if err.Error() != "invalid date filter: parse failed" {
		t.Errorf("expected 'invalid date filter: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation(`invalid date filter "foo"`)

	wrapped := fmt.Errorf("failed to build query: %w", original)
	doubleWrapped := fmt.Errorf("search: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != `invalid date filter "foo"` {
		t.Errorf("unexpected message %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	wrapped := fmt.Errorf("store error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestConfigAndParseErrors(t *testing.T) {
	cause := errors.New("no such file")

	cfgErr := apperr.NewConfig("/tmp/key.json", cause)
	assert.Equal(t, "config /tmp/key.json: no such file", cfgErr.Error())
	assert.ErrorIs(t, cfgErr, cause)

	parseErr := &apperr.ParseError{Path: "a.json", Err: cause}
	assert.Equal(t, "parse a.json: no such file", parseErr.Error())
	assert.ErrorIs(t, parseErr, cause)
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    fmt.Errorf("wrap: %w", apperr.NewValidation(`invalid date filter "foo"`)),
			status: http.StatusBadRequest,
			body:   `invalid date filter \"foo\"`,
		},
		{
			name:   "echo http error",
			err:    echo.NewHTTPError(http.StatusNotFound, "not found"),
			status: http.StatusNotFound,
			body:   "not found",
		},
		{
			name:   "store query",
			err:    fmt.Errorf("%w: timeout", apperr.ErrStoreQuery),
			status: http.StatusServiceUnavailable,
			body:   "search backend unavailable",
		},
		{
			name:   "embedding backend down",
			err:    fmt.Errorf("failed to embed query: %w", apperr.ErrEmbeddingUnavailable),
			status: http.StatusServiceUnavailable,
			body:   "embedding backend unavailable",
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			apperr.GlobalErrorHandler()(tt.err, c)

			require.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
