package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/security"
)

var cheap = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("walkies-at-6pm", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)

	ok, err := security.VerifyPassword("walkies-at-6pm", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("walkies-at-7pm", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := security.HashPassword("walkies-at-6pm", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per hash")
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := security.HashPassword("", cheap)
	assert.ErrorIs(t, err, security.ErrPasswordBlankOnly)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"walkies-123",
		"$2a$10$abcdefghijklmnopqrstuu",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5a2V5",
	} {
		_, err := security.VerifyPassword("irrelevant", encoded)
		assert.ErrorIs(t, err, security.ErrMalformedHash, encoded)
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("walkies-at-6pm", cheap)
	require.NoError(t, err)

	assert.False(t, security.NeedsRehash(hash, cheap))

	stronger := cheap
	stronger.ArgonTime = 3
	assert.True(t, security.NeedsRehash(hash, stronger))

	weaker := cheap
	weaker.ArgonMemoryKB = 512
	assert.False(t, security.NeedsRehash(hash, weaker))

	assert.True(t, security.NeedsRehash("garbage", cheap))
}

func TestParamsFromConfigClamps(t *testing.T) {
	p := security.ParamsFromConfig(config.PasswordConfig{ArgonMemoryKB: 1 << 30, ArgonParallelism: 64})
	assert.EqualValues(t, 512*1024, p.MemoryKB)
	assert.EqualValues(t, 1, p.Passes)
	assert.EqualValues(t, 16, p.Lanes)
	assert.EqualValues(t, 16, p.SaltLen)
	assert.EqualValues(t, 16, p.KeyLen)
}

func TestCheckPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		email    string
		want     error
	}{
		{"ok", "treats-4-all", "asha@example.com", nil},
		{"too short", "woof", "", security.ErrPasswordTooShort},
		{"multibyte counted by rune", "पासवर्ड१२", "", nil},
		{"too long", strings.Repeat("a", security.MaxPasswordLength+1), "", security.ErrPasswordTooLong},
		{"blank", "          ", "", security.ErrPasswordBlankOnly},
		{"same as email", "Asha@Example.com", "asha@example.com", security.ErrPasswordIsEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := security.CheckPolicy(tc.password, tc.email)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
