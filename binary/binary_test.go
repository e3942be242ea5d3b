package binary

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackage(t *testing.T) {
	data := []byte("hello")
	got := Package(data, "screenshot-1.png", "image/png")

	decoded, err := base64.StdEncoding.DecodeString(got.Data)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.Equal(t, "image/png", got.MimeType)
	assert.Equal(t, "screenshot-1.png", got.FileName)
	assert.Equal(t, 5, got.FileSize)
	assert.Equal(t, "png", got.FileExtension)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", got.Hash)
}

func TestPackage_SniffsMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")
	got := Package(pdf, "webpage.pdf", "")
	assert.Equal(t, "application/pdf", got.MimeType)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", extension("webpage-1.pdf"))
	assert.Equal(t, "gz", extension("a.tar.gz"))
	assert.Equal(t, "noext", extension("noext"))
}
