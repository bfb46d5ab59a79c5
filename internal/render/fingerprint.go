package render

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// renderFingerprintKey and payloadFingerprintKey give the render and
// payload fingerprints separate BLAKE3 key domains from each other and
// from blobstore's content-hash domain, so none of the three hash
// spaces can ever collide with one another.
var renderFingerprintKey = [32]byte{
	'c', 't', 'x', '.', 'r', 'e', 'n', 'd', 'e', 'r', 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var payloadFingerprintKey = [32]byte{
	'c', 't', 'x', '.', 'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// fingerprintWriter accumulates the render fingerprint's fixed-order
// input: the pack id, the canonical-JSON policy, then each included
// artifact's post-redaction content hash, all fed into one keyed BLAKE3
// hasher.
type fingerprintWriter struct {
	h *blake3.Hasher
}

func newFingerprintWriter() *fingerprintWriter {
	h, err := blake3.NewKeyed(renderFingerprintKey[:])
	if err != nil {
		panic("render: blake3 keyed init failed: " + err.Error())
	}
	return &fingerprintWriter{h: h}
}

func (w *fingerprintWriter) writeString(s string) {
	w.h.Write([]byte(s))
}

func (w *fingerprintWriter) sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

// hashPayload computes the payload fingerprint over the final,
// concatenated payload bytes.
func hashPayload(payload string) string {
	h, err := blake3.NewKeyed(payloadFingerprintKey[:])
	if err != nil {
		panic("render: blake3 keyed init failed: " + err.Error())
	}
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
