package client

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const defaultDownloadName = "documento.pdf"

var (
	dispositionEncoded = regexp.MustCompile(`(?i)filename\*=UTF-8''([^;]+)`)
	dispositionQuoted  = regexp.MustCompile(`(?i)filename="([^"]+)"`)
	dispositionBare    = regexp.MustCompile(`(?i)filename=([^; ]+)`)
)

// FilenameFromHeaders picks a download name. With a Content-Disposition
// header the RFC 5987 form wins over a quoted name, which wins over a bare
// one. Without the header the name is derived from Content-Type.
func FilenameFromHeaders(h http.Header) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		ct := h.Get("Content-Type")
		switch {
		case strings.Contains(ct, "word"):
			return "documento.docx"
		case strings.Contains(ct, "sheet"):
			return "documento.xlsx"
		case strings.Contains(ct, "presentation"):
			return "documento.pptx"
		}
		return defaultDownloadName
	}

	if m := dispositionEncoded.FindStringSubmatch(cd); m != nil {
		if name, err := url.PathUnescape(strings.TrimSpace(m[1])); err == nil {
			return name
		}
		return m[1]
	}
	if m := dispositionQuoted.FindStringSubmatch(cd); m != nil {
		return m[1]
	}
	if m := dispositionBare.FindStringSubmatch(cd); m != nil {
		return m[1]
	}
	return defaultDownloadName
}
