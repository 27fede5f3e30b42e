package util

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/http"
	"strings"
)

// DefaultImageMIME is used when neither the client nor the bytes tell us the type.
const DefaultImageMIME = "image/jpeg"

// PickMIME берём явный MIME (из multipart-заголовка), затем детектим по байтам, иначе image/jpeg.
// Sniffed types are only trusted when they are images; octet-stream and text fall back to the default.
func PickMIME(explicit string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" && exp != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(exp); err == nil {
			return mt
		}
		return exp
	}
	if len(data) > 0 {
		if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
			return sniffed
		}
	}
	return DefaultImageMIME
}

// ExtForMIME returns a file extension for storing an uploaded page.
func ExtForMIME(m string) string {
	switch m {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	}
	if exts, err := mime.ExtensionsByType(m); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// SHA256Hex hashes the concatenation of all parts (order matters).
func SHA256Hex(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
