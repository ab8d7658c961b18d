// Package imagestore keeps uploaded x-ray images. Images live on local disk
// or in Cloudinary; either way the caller gets back a URL to store in the
// x-ray entry's imageUrl.
package imagestore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("image not found")
	ErrFileTooLarge       = errors.New("image exceeds the 20 MB limit")
	ErrInvalidContentType = errors.New("only PNG, JPEG and DICOM images are accepted")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the largest accepted upload in bytes.
const MaxFileSize = 20 * 1024 * 1024

var AllowedContentTypes = map[string]bool{
	"image/png":         true,
	"image/jpeg":        true,
	"image/dicom":       true,
	"application/dicom": true,
}

var extensionTypes = map[string]string{
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".dcm":   "application/dicom",
	".dicom": "application/dicom",
}

// Image describes one stored upload.
type Image struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	URL         string    `json:"url"`
	PatientID   int64     `json:"patientId,omitempty"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store interface {
	Save(ctx context.Context, img Image, content io.Reader) (*Image, error)
	Delete(ctx context.Context, id string) error
}

// Opener is implemented by stores that can serve the bytes back.
type Opener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, *Image, error)
}

// ContentType resolves the type of an upload from its part header, falling
// back to the file extension when the header is missing or generic.
func ContentType(fileName, header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if i := strings.Index(header, ";"); i >= 0 {
		header = strings.TrimSpace(header[:i])
	}
	if header != "" && header != "application/octet-stream" {
		return header
	}
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return t
	}
	return "application/octet-stream"
}

// readUpload checks img and reads content up to the size limit, filling in
// size and hash.
func readUpload(img *Image, content io.Reader) ([]byte, error) {
	if img.FileName == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedContentTypes[img.ContentType] {
		return nil, ErrInvalidContentType
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	img.Size = int64(len(data))
	img.Hash = fmt.Sprintf("%x", sha256.Sum256(data))
	return data, nil
}

func extensionFor(img Image) string {
	if ext := strings.ToLower(filepath.Ext(img.FileName)); extensionTypes[ext] != "" {
		return ext
	}
	switch img.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	return ".dcm"
}

func newReader(data []byte) io.Reader { return bytes.NewReader(data) }
