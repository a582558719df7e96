package pillar

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"integrity-service/core/model"
)

var algorithms = map[string]func() hash.Hash{
	"MD5":    md5.New,
	"SHA1":   sha1.New,
	"SHA256": sha256.New,
	"SHA384": sha512.New384,
	"SHA512": sha512.New,
}

// DefaultSpec is the spec used when none is configured.
var DefaultSpec = model.ChecksumSpec{Algorithm: "MD5"}

// NewHasher returns the hash for spec. A salted spec yields an HMAC keyed with the
// hex-decoded salt.
func NewHasher(spec model.ChecksumSpec) (hash.Hash, error) {
	spec = spec.Normalized()
	newHash, ok := algorithms[spec.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: checksum algorithm %q", ErrUnsupported, spec.Algorithm)
	}
	if spec.Salt == "" {
		return newHash(), nil
	}
	key, err := hex.DecodeString(spec.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid checksum salt: %w", err)
	}
	return hmac.New(newHash, key), nil
}

// Digest streams r through the hash for spec and returns the hex digest.
func Digest(r io.Reader, spec model.ChecksumSpec) (string, error) {
	h, err := NewHasher(spec)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
