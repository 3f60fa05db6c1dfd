package models

import (
	"path/filepath"
	"strings"
	"time"
)

// ConversionRecord is a locally kept conversion made while signed out.
// PDFRef is the blob store key of the converted file.
type ConversionRecord struct {
	ID            int64
	OriginalName  string
	OriginalType  string
	OriginalSize  int64
	PDFName       string
	PDFSize       int64
	PDFRef        string
	CreatedAt     time.Time
	ConvertedWith string
}

// UploadedFile is bookkeeping for a file submitted while signed out.
type UploadedFile struct {
	ID        int64
	Name      string
	Size      int64
	Type      string
	MimeType  string
	CreatedAt time.Time
}

// PDFNameFor replaces the last extension of name with ".pdf". A trailing
// dot is not an extension and is kept.
func PDFNameFor(name string) string {
	if ext := filepath.Ext(name); len(ext) > 1 {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ".pdf"
}

// FileKind maps an extension to the coarse type label kept in history.
func FileKind(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "doc", "docx":
		return "word"
	case "xls", "xlsx":
		return "excel"
	case "ppt", "pptx":
		return "powerpoint"
	case "pdf":
		return "pdf"
	case "txt":
		return "text"
	case "rtf":
		return "rtf"
	default:
		return "unknown"
	}
}
