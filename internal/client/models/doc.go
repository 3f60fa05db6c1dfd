// Package models defines the data the evadocs client keeps locally and
// exchanges with the EVA backend.
package models
