package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, field, filename, contentType, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir)
	require.NoError(t, err)

	fh := multipartFile(t, "file", "photo.png", "image/png", "fake-png-bytes")

	stored, err := svc.Save(fh)
	require.NoError(t, err)

	assert.Equal(t, "photo.png", stored.OriginalName)
	assert.NotEqual(t, "photo.png", stored.FileName, "stored name must not be client controlled")
	assert.True(t, strings.HasSuffix(stored.FileName, ".png"))
	assert.Equal(t, int64(len("fake-png-bytes")), stored.Size)
	assert.Equal(t, "/uploads/"+stored.FileName, stored.URL)

	onDisk, err := os.ReadFile(filepath.Join(dir, stored.FileName))
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(onDisk))
}

func TestSaveRejectsNonMedia(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	fh := multipartFile(t, "file", "script.sh", "application/x-sh", "#!/bin/sh")

	_, err = svc.Save(fh)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestNewServiceCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewService(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
