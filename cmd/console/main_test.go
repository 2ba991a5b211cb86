package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/visionbot/pkg/visionbot/api"
)

func TestUploadMessage_LocalFileWithCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	message, err := uploadMessage(api.IncomingMessage{Who: "John", Where: "JohnRoom"}, path+" caption", "!moondream")
	require.NoError(t, err)

	assert.Equal(t, "!moondream caption", message.Text)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, api.ImageOrigin(path), message.Attachments[0].Origin)
	assert.Equal(t, "cat.png", message.Attachments[0].Filename)
	assert.Equal(t, "image/png", message.Attachments[0].ContentType)
}

func TestUploadMessage_URL(t *testing.T) {
	message, err := uploadMessage(api.IncomingMessage{}, "https://example.com/dog.jpg?size=large q what breed?", "!moondream")
	require.NoError(t, err)

	assert.Equal(t, "!moondream q what breed?", message.Text)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, api.ImageOrigin("https://example.com/dog.jpg?size=large"), message.Attachments[0].Origin)
	assert.Equal(t, "dog.jpg", message.Attachments[0].Filename)
}

func TestUploadMessage_MissingFile(t *testing.T) {
	_, err := uploadMessage(api.IncomingMessage{}, filepath.Join(t.TempDir(), "missing.png"), "!moondream")

	assert.Error(t, err)
}

func TestWithCommandPrefix(t *testing.T) {
	assert.Equal(t, "", withCommandPrefix("", "!moondream"))
	assert.Equal(t, "!moondream detect cat", withCommandPrefix("detect cat", "!moondream"))
	assert.Equal(t, "!moondream detect cat", withCommandPrefix("!moondream detect cat", "!moondream"))
	assert.Equal(t, "!moondream", withCommandPrefix("!moondream", "!moondream"))
}
