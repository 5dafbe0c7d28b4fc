package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(dir, "poetry-install", "stderr dump")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^poetry-install-error-\d+\.txt$`), filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stderr dump", string(data))
}

func TestWriteErrorLogMissingDir(t *testing.T) {
	_, err := WriteErrorLog(filepath.Join(t.TempDir(), "absent"), "step", "content")
	assert.Error(t, err)
}
