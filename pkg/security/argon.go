// Package security contains everything related to the security of user data
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ArgonHash hashes passwords with argon2id into PHC strings
type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func New() *ArgonHash {
	return &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (a *ArgonHash) GenerateFromPassword(p string) (encoded string, err error) {
	salt, err := genRandByt(a.SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(p), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded = fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Parallelism, b64Salt, b64Hash)

	return encoded, nil
}

// phc is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$hash" string
type phc struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func decodePHC(e string) (*phc, error) {
	parts := strings.Split(e, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errors.New("invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, err
	}

	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var out phc

	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &out.memory, &out.iterations, &out.parallelism)
	if err != nil {
		return nil, err
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, err
	}

	if out.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, err
	}

	return &out, nil
}

// VerifyPasswd compares a password p with the stored PHC-style encoded hash e
func (a *ArgonHash) VerifyPasswd(p, e string) (ok bool, err error) {
	h, err := decodePHC(e)
	if err != nil {
		return false, err
	}

	calcHash := argon2.IDKey([]byte(p), h.salt, h.iterations, h.memory, h.parallelism, uint32(len(h.hash)))

	return subtle.ConstantTimeCompare(h.hash, calcHash) == 1, nil
}

// NeedsRehash reports whether e was made with other parameters than a uses.
// Login upgrades such hashes once the password is known to be right.
func (a *ArgonHash) NeedsRehash(e string) bool {
	h, err := decodePHC(e)
	if err != nil {
		return true
	}

	return h.memory != a.Memory ||
		h.iterations != a.Iterations ||
		h.parallelism != a.Parallelism ||
		uint32(len(h.hash)) != a.KeyLength
}

func genRandByt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	return b, nil
}
