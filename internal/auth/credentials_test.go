package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "password123", digest)

	// Per-call salt: hashing the same plaintext twice yields different
	// digests, and both verify.
	digest2, err := HashPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, digest, digest2)

	assert.True(t, CheckPassword("password123", digest))
	assert.True(t, CheckPassword("password123", digest2))
}

func TestCheckPassword(t *testing.T) {
	digest, err := HashPassword("correct horse")
	assert.NoError(t, err)

	tests := []struct {
		name   string
		plain  string
		digest string
		want   bool
	}{
		{
			name:   "matching password",
			plain:  "correct horse",
			digest: digest,
			want:   true,
		},
		{
			name:   "wrong password",
			plain:  "battery staple",
			digest: digest,
			want:   false,
		},
		{
			name:   "malformed digest",
			plain:  "correct horse",
			digest: "not-a-bcrypt-digest",
			want:   false,
		},
		{
			name:   "empty digest",
			plain:  "correct horse",
			digest: "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.plain, tt.digest))
		})
	}
}
