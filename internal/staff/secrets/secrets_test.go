package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "refurb/pkg/domain-errors"
)

func TestCheckPassword(t *testing.T) {
	cases := []struct {
		name         string
		password     string
		confirmation string
		want         string
	}{
		{"valid", "secret1", "secret1", ""},
		{"exactly six", "abcdef", "abcdef", ""},
		{"mismatch wins over length", "abc", "abd", MsgPasswordMismatch},
		{"too short", "abc", "abc", MsgPasswordTooShort},
		{"empty", "", "", MsgPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPassword(tc.password, tc.confirmation)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tc.want, dErrors.Message(err))
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.NoError(t, Verify("hunter22", hash))

	err = Verify("hunter23", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = h.Hash("")
	assert.Error(t, err)

	_, err = h.Hash(strings.Repeat("x", 80))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), MinPasswordLength)
}
