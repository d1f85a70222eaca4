package mac

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"github.com/dchest/siphash"
	"github.com/minio/highwayhash"
	sha256simd "github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	lcblake3 "lukechampine.com/blake3"
)

// Builtins returns the constructions shipped with the harness, in the order
// they are reported.
func Builtins() []Descriptor {
	return []Descriptor{
		hmacDescriptor("HMAC-SHA1", "SHA-1", sha1.Size, sha1.New),
		hmacDescriptor("HMAC-SHA256", "SHA-256", sha256.Size, sha256.New),
		hmacDescriptor("HMAC-SHA256-SIMD", "SHA-256",
			sha256simd.Size, sha256simd.New),
		hmacDescriptor("HMAC-SHA3-256", "SHA-3", 32, sha3.New256),
		hmacDescriptor("HMAC-BLAKE2b", "BLAKE2", blake2b.Size, newBlake2b),
		hmacDescriptor("HMAC-BLAKE2s", "BLAKE2", blake2s.Size, newBlake2s),
		hmacDescriptor("HMAC-BLAKE3", "BLAKE3", 32, newBlake3),
		{
			ID:          "MAC-BLAKE2b",
			Family:      "BLAKE2",
			Description: "keyed BLAKE2b-512",
			TagSize:     blake2b.Size,
			Construct: func(key []byte) (Context, error) {
				h, err := blake2b.New512(key)
				if err != nil {
					return nil, err
				}

				return FromHash(h), nil
			},
		},
		{
			ID:          "MAC-BLAKE2s",
			Family:      "BLAKE2",
			Description: "keyed BLAKE2s-256, SIMD kernels on amd64",
			TagSize:     blake2s.Size,
			Construct: func(key []byte) (Context, error) {
				h, err := blake2s.New256(key)
				if err != nil {
					return nil, err
				}

				return FromHash(h), nil
			},
		},
		{
			ID:          "MAC-BLAKE3",
			Family:      "BLAKE3",
			Description: "keyed BLAKE3",
			TagSize:     32,
			KeySize:     32,
			Construct: func(key []byte) (Context, error) {
				h, err := blake3.NewKeyed(key)
				if err != nil {
					return nil, err
				}

				return FromHash(h), nil
			},
		},
		{
			ID:          "MAC-BLAKE3-LC",
			Family:      "BLAKE3",
			Description: "keyed BLAKE3, lukechampine implementation",
			TagSize:     32,
			KeySize:     32,
			Construct: func(key []byte) (Context, error) {
				return FromHash(lcblake3.New(32, key)), nil
			},
		},
		{
			ID:          "MAC-HighwayHash",
			Family:      "HighwayHash",
			Description: "HighwayHash-256",
			TagSize:     highwayhash.Size,
			KeySize:     32,
			Construct: func(key []byte) (Context, error) {
				h, err := highwayhash.New(key)
				if err != nil {
					return nil, err
				}

				return FromHash(h), nil
			},
		},
		{
			ID:          "MAC-SipHash",
			Family:      "SipHash",
			Description: "SipHash-2-4 with 128-bit output",
			TagSize:     16,
			KeySize:     16,
			Construct: func(key []byte) (Context, error) {
				return FromHash(siphash.New128(key)), nil
			},
		},
	}
}

func hmacDescriptor(
	id, family string,
	tagSize int,
	newHash func() hash.Hash,
) Descriptor {
	return Descriptor{
		ID:          id,
		Family:      family,
		Description: "HMAC over " + family,
		TagSize:     tagSize,
		Construct: func(key []byte) (Context, error) {
			return FromHash(hmac.New(newHash, key)), nil
		},
	}
}

// The BLAKE hashes are used unkeyed underneath HMAC, so construction
// cannot fail.

func newBlake2b() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

func newBlake2s() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}

func newBlake3() hash.Hash {
	return blake3.New()
}
