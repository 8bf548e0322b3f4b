package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string  `json:"email" validate:"required,email"`
	Role  string  `json:"role" validate:"omitempty,oneof=user admin"`
	Price float64 `json:"price" validate:"gte=0"`
}

func decode(body string) (sample, error) {
	var s sample
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return s, DecodeJSON(req, &s)
}

func TestDecodeJSON(t *testing.T) {
	s, err := decode(`{"email":"a@x.com","role":"admin","price":3}`)
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Role)

	_, err = decode(`{not json`)
	assert.EqualError(t, err, "Invalid input")

	_, err = decode(`{}`)
	assert.EqualError(t, err, "email is required")

	_, err = decode(`{"email":"nope","role":"root","price":-1}`)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "role must be one of [user admin]")
	assert.Contains(t, err.Error(), "price must be at least 0")
}
