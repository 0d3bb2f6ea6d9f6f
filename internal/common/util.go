package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system randomness source fails, which leaves no safe way
// to continue generating salts or keys.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. It is used to drop passwords read
// from the terminal as soon as they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
