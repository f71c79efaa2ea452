package upload_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akozharin/music-store/internal/upload"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["image"]
	require.Len(t, files, 1)
	return files[0]
}

func newSaver(t *testing.T) (*upload.Saver, string) {
	staticDir := t.TempDir()
	destDir := filepath.Join(staticDir, "images", "clients")
	require.NoError(t, os.MkdirAll(destDir, 0o755))
	return &upload.Saver{StaticDir: staticDir, Mount: "/static"}, destDir
}

func TestSaveNilFile(t *testing.T) {
	saver, destDir := newSaver(t)

	url, err := saver.Save(nil, destDir)
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestSaveKeepsExtensionAndContent(t *testing.T) {
	saver, destDir := newSaver(t)

	url, err := saver.Save(fileHeader(t, "photo.png", []byte("content")), destDir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/static/images/clients/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "/static/")
	data, err := os.ReadFile(filepath.Join(saver.StaticDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	require.Equal(t, []byte("content"), data)
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	saver, destDir := newSaver(t)

	first, err := saver.Save(fileHeader(t, "same.jpg", []byte("a")), destDir)
	require.NoError(t, err)
	second, err := saver.Save(fileHeader(t, "same.jpg", []byte("b")), destDir)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestSaveMissingDestinationLeavesNothing(t *testing.T) {
	saver, _ := newSaver(t)

	missing := filepath.Join(saver.StaticDir, "does", "not", "exist")
	url, err := saver.Save(fileHeader(t, "x.gif", []byte("a")), missing)
	require.Error(t, err)
	require.Empty(t, url)

	_, statErr := os.Stat(missing)
	require.True(t, os.IsNotExist(statErr))
}

func TestRemove(t *testing.T) {
	saver, destDir := newSaver(t)

	url, err := saver.Save(fileHeader(t, "gone.png", []byte("x")), destDir)
	require.NoError(t, err)

	require.NoError(t, saver.Remove(url))

	rel := strings.TrimPrefix(url, "/static/")
	_, statErr := os.Stat(filepath.Join(saver.StaticDir, filepath.FromSlash(rel)))
	require.True(t, os.IsNotExist(statErr))
}

func TestRemoveMissingFileErrors(t *testing.T) {
	saver, _ := newSaver(t)

	err := saver.Remove("/static/images/clients/nope.png")
	require.Error(t, err)
}
