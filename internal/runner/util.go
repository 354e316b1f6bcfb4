package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// FingerprintJSON hashes the canonical JSON form of v together with the
// model salt. Two runs with identical input and model share a fingerprint.
func FingerprintJSON(v any, salt string) string {
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte("unmarshalable")
	}
	h := sha256.New()
	h.Write(b)
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil))
}
