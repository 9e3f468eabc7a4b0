package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
)

// Account passwords are stored in PHC form:
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<key>
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	hashScheme = "argon2id"
)

var (
	ErrMalformedHash     = errors.New("security: malformed argon2id hash")
	ErrPasswordTooShort  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong   = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordIsEmail   = errors.New("password must not be the account email")
	ErrPasswordBlankOnly = errors.New("password must not be blank")
)

var b64 = base64.RawStdEncoding

// Params are the Argon2id cost settings recorded in every hash.
type Params struct {
	MemoryKB uint32
	Passes   uint32
	Lanes    uint8
	SaltLen  uint32
	KeyLen   uint32
}

// ParamsFromConfig reads the PETCO_ARGON_* settings, clamping each one into a
// range the login path can afford.
func ParamsFromConfig(cfg config.PasswordConfig) Params {
	return Params{
		MemoryKB: uint32(bounded(cfg.ArgonMemoryKB, 8, 512*1024)),
		Passes:   uint32(bounded(cfg.ArgonTime, 1, 10)),
		Lanes:    uint8(bounded(cfg.ArgonParallelism, 1, 16)),
		SaltLen:  uint32(bounded(cfg.ArgonSaltLen, 16, 64)),
		KeyLen:   uint32(bounded(cfg.ArgonKeyLen, 16, 64)),
	}
}

func bounded(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// CheckPolicy applies the account password rules used at registration and on
// password change.
func CheckPolicy(password, email string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case strings.TrimSpace(password) == "":
		return ErrPasswordBlankOnly
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	case email != "" && strings.EqualFold(strings.TrimSpace(password), strings.TrimSpace(email)):
		return ErrPasswordIsEmail
	}
	return nil
}

// HashPassword derives a fresh salted Argon2id hash.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", ErrPasswordBlankOnly
	}
	p := ParamsFromConfig(cfg)
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("security: read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Passes, p.MemoryKB, p.Lanes, p.KeyLen)
	return p.encode(salt, key), nil
}

func (p Params) encode(salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		hashScheme, argon2.Version, p.MemoryKB, p.Passes, p.Lanes, b64.EncodeToString(salt), b64.EncodeToString(key))
}

// VerifyPassword reports whether password matches the stored hash. A hash that
// cannot be parsed is an error, not a mismatch.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Passes, p.MemoryKB, p.Lanes, p.KeyLen)
	return subtle.ConstantTimeCompare(key, got) == 1, nil
}

// NeedsRehash reports whether encoded was produced with cheaper settings than
// cfg currently asks for. Login upgrades such hashes in place.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	stored, _, _, err := decode(encoded)
	if err != nil {
		return true
	}
	want := ParamsFromConfig(cfg)
	return stored.MemoryKB < want.MemoryKB ||
		stored.Passes < want.Passes ||
		stored.Lanes < want.Lanes ||
		stored.SaltLen < want.SaltLen ||
		stored.KeyLen < want.KeyLen
}

func decode(encoded string) (Params, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != hashScheme {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var p Params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.MemoryKB, &p.Passes, &p.Lanes); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if p.MemoryKB == 0 || p.Passes == 0 || p.Lanes == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
