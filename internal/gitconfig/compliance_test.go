package gitconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesCompliant(t *testing.T) {
	template := []string{".venv/", "*.parquet", "__pycache__/"}

	t.Run("identical files comply", func(t *testing.T) {
		assert.True(t, LinesCompliant(template, template))
	})

	t.Run("extra local lines comply", func(t *testing.T) {
		local := append([]string{"# mine", "data/"}, template...)
		assert.True(t, LinesCompliant(local, template))
	})

	t.Run("missing line fails", func(t *testing.T) {
		assert.False(t, LinesCompliant([]string{".venv/", "*.parquet"}, template))
	})

	t.Run("order is irrelevant", func(t *testing.T) {
		assert.True(t, LinesCompliant([]string{"__pycache__/", "*.parquet", ".venv/"}, template))
	})

	t.Run("empty template always complies", func(t *testing.T) {
		assert.True(t, LinesCompliant(nil, nil))
		assert.True(t, LinesCompliant([]string{"anything"}, nil))
	})

	t.Run("empty local fails a non-empty template", func(t *testing.T) {
		assert.False(t, LinesCompliant(nil, template))
	})
}

func TestLinesCompliantProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	lineGen := gen.RegexMatch(`[a-z*./_-]{1,12}`)
	linesGen := gen.SliceOf(lineGen)

	properties.Property("a file complies with itself", prop.ForAll(
		func(lines []string) bool {
			return LinesCompliant(lines, lines)
		},
		linesGen,
	))

	properties.Property("adding local lines never breaks compliance", prop.ForAll(
		func(template, extra []string) bool {
			local := append(append([]string{}, template...), extra...)
			return LinesCompliant(local, template)
		},
		linesGen, linesGen,
	))

	properties.Property("a template line absent locally breaks compliance", prop.ForAll(
		func(local []string, required string) bool {
			for _, line := range local {
				if line == required {
					return true // not absent, nothing to check
				}
			}
			template := append(append([]string{}, local...), required)
			return !LinesCompliant(local, template)
		},
		linesGen, lineGen,
	))

	properties.TestingRun(t)
}

func TestFileCompliant(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	template := write("template.gitignore", ".venv/\n*.parquet\n")

	t.Run("superset local complies", func(t *testing.T) {
		local := write("local-ok.gitignore", "# mine\n.venv/\n*.parquet\ndata/\n")
		ok, err := FileCompliant(local, template)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("crlf line endings are normalized", func(t *testing.T) {
		local := write("local-crlf.gitignore", ".venv/\r\n*.parquet\r\n")
		ok, err := FileCompliant(local, template)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing required line fails", func(t *testing.T) {
		local := write("local-bad.gitignore", ".venv/\n")
		ok, err := FileCompliant(local, template)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing local file fails", func(t *testing.T) {
		ok, err := FileCompliant(filepath.Join(dir, "absent"), template)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing template file complies", func(t *testing.T) {
		local := write("local-any.gitignore", "whatever\n")
		ok, err := FileCompliant(local, filepath.Join(dir, "no-template"))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
