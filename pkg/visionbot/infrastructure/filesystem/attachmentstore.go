package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// AttachmentStore saves outbound attachments for text-only transports (IRC, the console): the file is written to the
// temp directory and the message links to it instead.
type AttachmentStore struct {
	pathProvider *TempFilePathProvider
	baseURL      string
}

func NewAttachmentStore(pathProvider *TempFilePathProvider, config *common.Config) *AttachmentStore {
	return &AttachmentStore{
		pathProvider: pathProvider,
		baseURL:      strings.TrimSuffix(config.GetString(domain.ConfigKeyAttachmentBaseURL), "/"),
	}
}

// Save writes the attachment under a unique name and returns where it can be found: a URL if attachmentBaseURL is
// configured (something else is supposed to serve the directory), a local path otherwise.
func (a *AttachmentStore) Save(attachment *domain.Attachment) (string, error) {
	if err := os.MkdirAll(a.pathProvider.Directory(), 0755); err != nil {
		return "", err
	}
	fileName := uuid.NewString() + "_" + sanitizeFileName(attachment.Filename)
	filePath := a.pathProvider.GetTempFilePath(fileName)
	if err := os.WriteFile(filePath, attachment.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save attachment %q: %w", attachment.Filename, err)
	}
	if a.baseURL != "" {
		return a.baseURL + "/" + fileName, nil
	}
	return filePath, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r < 32 {
			return '_'
		}
		return r
	}, name)
}
