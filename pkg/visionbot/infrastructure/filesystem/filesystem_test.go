package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

func TestAttachmentStore_SavesToTempDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "attachments")
	config := common.NewConfig(map[string]any{domain.ConfigKeyTempDirectory: dir})
	store := NewAttachmentStore(NewTempFilePathProvider(config), config)

	location, err := store.Save(&domain.Attachment{Filename: "detect_annotated.png", Data: []byte("png")})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(location))
	assert.True(t, strings.HasSuffix(location, "_detect_annotated.png"))
	content, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), content)
}

func TestAttachmentStore_LinksToBaseURL(t *testing.T) {
	dir := t.TempDir()
	config := common.NewConfig(map[string]any{
		domain.ConfigKeyTempDirectory:     dir,
		domain.ConfigKeyAttachmentBaseURL: "https://files.example.com/bot/",
	})
	store := NewAttachmentStore(NewTempFilePathProvider(config), config)

	location, err := store.Save(&domain.Attachment{Filename: "../../etc/my point.png", Data: []byte("png")})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(location, "https://files.example.com/bot/"), location)
	fileName := strings.TrimPrefix(location, "https://files.example.com/bot/")
	assert.True(t, strings.HasSuffix(fileName, "_my_point.png"), fileName)
	_, err = os.Stat(filepath.Join(dir, fileName))
	assert.NoError(t, err)
}

func TestImageReader(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.png")
	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(small, []byte("1234"), 0644))
	require.NoError(t, os.WriteFile(big, []byte("123456789"), 0644))
	reader := NewImageReader(common.NewConfig(map[string]any{domain.ConfigKeyMaxImageBytes: 8}))

	content, err := reader.Fetch(t.Context(), domain.ImageOrigin(small))
	require.NoError(t, err)
	assert.Equal(t, []byte("1234"), content)

	_, err = reader.Fetch(t.Context(), domain.ImageOrigin(big))
	assert.ErrorIs(t, err, common.ErrResponseTooLarge)

	_, err = reader.Fetch(t.Context(), domain.ImageOrigin(filepath.Join(dir, "missing.png")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
