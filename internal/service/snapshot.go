package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SnapshotSigner authenticates pricing snapshots across the quote/checkout
// round trip. The quote endpoint signs the snapshot it mints; checkout only
// accepts a snapshot whose signature verifies, so a client cannot alter the
// amounts it echoes back.
type SnapshotSigner struct {
	secret []byte
}

func NewSnapshotSigner(secret string) *SnapshotSigner {
	return &SnapshotSigner{secret: []byte(secret)}
}

// Sign returns the hex HMAC-SHA256 of the snapshot.
func (s *SnapshotSigner) Sign(snapshot string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(snapshot))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the snapshot. Comparison is
// constant time.
func (s *SnapshotSigner) Verify(snapshot, signature string) bool {
	return hmac.Equal([]byte(s.Sign(snapshot)), []byte(signature))
}
