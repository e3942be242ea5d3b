// Package binary packages captured bytes (screenshots, PDFs) as JSON-safe
// attachments.
package binary

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/use-agent/pagewalk/models"
)

// Package converts data into an attachment. An empty mimeType is sniffed
// from the content.
func Package(data []byte, fileName, mimeType string) models.BinaryData {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	sum := md5.Sum(data)
	return models.BinaryData{
		Data:          base64.StdEncoding.EncodeToString(data),
		MimeType:      mimeType,
		FileName:      fileName,
		FileSize:      len(data),
		FileExtension: extension(fileName),
		Hash:          hex.EncodeToString(sum[:]),
	}
}

// extension returns the part after the last dot, or the whole name when
// there is none.
func extension(fileName string) string {
	if i := strings.LastIndexByte(fileName, '.'); i >= 0 {
		return fileName[i+1:]
	}
	return fileName
}
