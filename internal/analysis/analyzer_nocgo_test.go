//go:build !cgo

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/errors"
)

// Without tree-sitter every ECMAScript file fails to parse; the scan must
// still complete and report each one.
func TestScan_ParseFailuresBecomeDiagnostics(t *testing.T) {
	root := pyProject(t, map[string]string{
		"tsconfig.json": "{}\n",
		"src/a.ts":      `import { b } from "./b";`,
		"src/b.ts":      `export const b = 1;`,
	})
	scan, err := newAnalyzer(t).Scan(context.Background(), Options{Path: root})
	require.NoError(t, err)

	assert.Empty(t, scan.Files)
	assert.Equal(t, 0, scan.Graph.NumNodes())
	require.Len(t, scan.Diagnostics, 2)
	for _, d := range scan.Diagnostics {
		assert.Equal(t, errors.FileParseError, d.Code)
	}
	assert.Equal(t, "src/a.ts", scan.Diagnostics[0].Path)
}
