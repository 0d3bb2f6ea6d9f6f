// Package cryptox turns passwords into verifiers that are safe to persist and
// checks candidate passwords against them.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"golang.org/x/crypto/argon2"
)

var (
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrInvalidHash   = errors.New("invalid password hash")
)

// PasswordHasher produces salted one-way verifiers and checks passwords
// against them.
type PasswordHasher interface {
	// Hash returns an encoded verifier for password.
	Hash(password string) (string, error)

	// Verify reports whether password matches encoded. A malformed encoding is
	// an error, never a match.
	Verify(password, encoded string) (bool, error)
}

// Params are the argon2id cost parameters. Memory is in KiB.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultParams follows the OWASP argon2id recommendation.
var DefaultParams = Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Argon2idHasher implements PasswordHasher with argon2id and PHC-encoded
// output: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	params Params
}

func NewArgon2idHasher(p Params) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := common.GenerateRandByteArray(h.params.SaltLen)
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	p, salt, expected, err := decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrInvalidHash
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if threads == 0 || threads > 255 || p.Time == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
