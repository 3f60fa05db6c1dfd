package models

import "github.com/dmitrijs2005/evadocs/internal/timex"

// SignatureReport is the outcome of validating a signed PDF.
type SignatureReport struct {
	IsValid    bool            `json:"is_valid"`
	SignerName string          `json:"signer_name,omitempty"`
	Timestamp  timex.Timestamp `json:"timestamp"`
	Trusted    bool            `json:"trusted"`
	Integrity  string          `json:"integrity,omitempty"`
}

// SignResult describes the version produced by signing a document.
type SignResult struct {
	Status  string  `json:"status"`
	Version Version `json:"version"`
}
