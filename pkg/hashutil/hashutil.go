package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"lukechampine.com/blake3"

	"github.com/danisworo/estate-scraper/pkg/urlutil"
)

type HashAlgo string

const (
	HashAlgoSHA256 = "sha256"
	HashAlgoBLAKE3 = "blake3"
)

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		return hashBytesSha256(data), nil
	case HashAlgoBLAKE3:
		return hashBytesBlake3(data), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Fingerprint derives a deterministic cache key from a request URL and its
// query parameters. The URL is canonicalized first and the parameters are
// serialized in sorted key order, so equivalent requests always map to the
// same fingerprint regardless of parameter ordering at the call site.
func Fingerprint(requestUrl url.URL, params map[string]string) string {
	canonical := urlutil.Canonicalize(requestUrl)

	var b strings.Builder
	b.WriteString(canonical.String())

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte('|')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(params[k])
		}
	}

	return hashBytesBlake3([]byte(b.String()))
}

func hashBytesSha256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func hashBytesBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
