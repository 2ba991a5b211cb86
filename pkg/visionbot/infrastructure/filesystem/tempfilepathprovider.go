package filesystem

import (
	"os"
	"path/filepath"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

type TempFilePathProvider struct {
	tempDirectoryPath string
}

func NewTempFilePathProvider(config *common.Config) *TempFilePathProvider {
	return &TempFilePathProvider{
		tempDirectoryPath: config.GetStringOrDefault(domain.ConfigKeyTempDirectory, filepath.Join(os.TempDir(), "visionbot")),
	}
}

func (t *TempFilePathProvider) GetTempFilePath(fileName string) string {
	return filepath.Join(t.tempDirectoryPath, fileName)
}

func (t *TempFilePathProvider) Directory() string {
	return t.tempDirectoryPath
}
