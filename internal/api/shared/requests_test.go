package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Name string `json:"name" validate:"required,min=1,max=5"`
}

type selfValidating struct {
	err error
}

func (s selfValidating) Validate() error { return s.err }

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes a valid body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok"}`))

		var req taggedRequest
		require.NoError(t, DecodeJSON(r, &req))
		assert.Equal(t, "ok", req.Name)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))

		var req taggedRequest
		assert.Error(t, DecodeJSON(r, &req))
	})
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("passes valid tags", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateRequest(taggedRequest{Name: "ok"}))
	})

	t.Run("rejects violated tags", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ValidateRequest(taggedRequest{Name: "toolong"}))
		assert.Error(t, ValidateRequest(taggedRequest{}))
	})

	t.Run("prefers a type's own Validate method", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("custom validation failed")
		assert.ErrorIs(t, ValidateRequest(selfValidating{err: sentinel}), sentinel)
		assert.NoError(t, ValidateRequest(selfValidating{}))
	})
}
