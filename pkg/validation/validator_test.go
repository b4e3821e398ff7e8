package validation

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Gin's validator engine reads the "binding" struct tag.
type sample struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
}

func testValidator(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestStrongpwdAlias(t *testing.T) {
	v := testValidator(t)

	assert.NoError(t, v.Struct(sample{Email: "a@x.com", Password: "Abcdef12"}))

	for _, pw := range []string{"abcdefg1", "ABCDEFG1", "Abcdefgh", "Ab1"} {
		assert.Error(t, v.Struct(sample{Email: "a@x.com", Password: pw}), "password %q", pw)
	}
}

func TestToDetailsUsesJSONFieldNames(t *testing.T) {
	v := testValidator(t)

	err := v.Struct(sample{Email: "not-an-email", Password: "Abcdef12"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Contains(t, details, "email")
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestToDetailsJSONErrors(t *testing.T) {
	var target sample
	err := json.Unmarshal([]byte("{bad json"), &target)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(io.EOF))
	assert.Nil(t, ToDetails(nil))
}
