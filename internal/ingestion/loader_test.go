package ingestion

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFLoader_Load(t *testing.T) {
	loader := NewPDFLoader(log.New(io.Discard, "", 0))

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("/nonexistent/report.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document not found")
	})

	t.Run("malformed file does not panic", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

		_, err := loader.Load(path)
		require.Error(t, err)
	})
}
