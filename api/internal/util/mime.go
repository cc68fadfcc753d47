package util

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// AcceptedImageMIMEs is the upload allow-list.
var AcceptedImageMIMEs = []string{"image/jpeg", "image/png", "image/webp"}

// AcceptedImageExts matches AcceptedImageMIMEs for file pickers.
var AcceptedImageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

func SniffMimeHTTP(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	// WebP: RIFF....WEBP
	if len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP" {
		return "image/webp"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

// NormalizeMIME lowercases and drops parameters ("image/JPEG; q=1" -> "image/jpeg").
func NormalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "image/jpg" || m == "image/pjpeg" {
		return "image/jpeg"
	}
	return m
}

func IsAcceptedImageMIME(m string) bool {
	m = NormalizeMIME(m)
	for _, a := range AcceptedImageMIMEs {
		if m == a {
			return true
		}
	}
	return false
}

// PickImageMIME decides the upload type. Recognised content has the final
// say; the declared type and then the file extension are only consulted
// when the bytes are absent or unrecognised. ok is false when the result is
// off the allow-list.
func PickImageMIME(explicit, filename string, data []byte) (string, bool) {
	if len(data) > 0 {
		s := NormalizeMIME(SniffMimeHTTP(data))
		if IsAcceptedImageMIME(s) {
			return s, true
		}
		if s != "application/octet-stream" {
			return "", false
		}
	}
	if IsAcceptedImageMIME(explicit) {
		return NormalizeMIME(explicit), true
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if byExt := mime.TypeByExtension(ext); IsAcceptedImageMIME(byExt) {
			return NormalizeMIME(byExt), true
		}
	}
	return "", false
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// DecodeBase64MaybeDataURL decodes plain base64 or a data: URL, in which
// case the MIME from the header is returned too. Standard, URL-safe and
// unpadded alphabets are accepted.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	payload, hintMIME := strings.TrimSpace(s), ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("data URL without payload")
		}
		hintMIME, _, _ = strings.Cut(header, ";")
		payload = body
	}
	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		b, err := enc.DecodeString(payload)
		if err == nil {
			return b, hintMIME, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}
