package blobstore

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures the same bytes produce different hashes depending
// on what they're being hashed as (blob content vs. a fingerprint
// input), which prevents a payload fingerprint from ever colliding with
// a blob's own content hash.
type domainKey [32]byte

var blobDomainKey = domainKey{
	'c', 't', 'x', '.', 'b', 'l', 'o', 'b', 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashBytes computes the content hash used to address blobs and
// artifact content, hex-encoded.
func HashBytes(data []byte) string {
	h, err := blake3.NewKeyed(blobDomainKey[:])
	if err != nil {
		panic("blobstore: blake3 keyed init failed: " + err.Error())
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashReader streams r through the blob-domain hasher, returning the
// hex-encoded content hash and the number of bytes read.
func HashReader(r io.Reader) (string, int64, error) {
	h, err := blake3.NewKeyed(blobDomainKey[:])
	if err != nil {
		panic("blobstore: blake3 keyed init failed: " + err.Error())
	}
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// shardPath splits a hash into a two-hex-character shard directory and
// the remaining filename, e.g. "ab1234..." -> ("ab", "ab1234...").
func shardPath(hash string) (dir, name string) {
	if len(hash) < 2 {
		return "xx", hash
	}
	return hash[:2], hash
}
