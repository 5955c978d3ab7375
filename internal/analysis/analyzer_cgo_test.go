//go:build cgo

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/extract"
	"depscope/internal/graph"
	"depscope/internal/lang"
)

func TestScan_TypeScriptProject(t *testing.T) {
	root := pyProject(t, map[string]string{
		"tsconfig.json": "{}\n",
		"package.json":  `{"name":"web","dependencies":{"react":"^18.2.0"},"devDependencies":{"vitest":"^1.0.0"}}`,
		"src/app.tsx": `import React from "react";
import { a, b } from "./lib/util";
import fs from "node:fs";
export default function App() { return null }
`,
		"src/lib/util.ts": `export const a = 1;
export function b(x: number) { if (x > 1) { return x } return 0 }
const lazy = () => import("../app");
`,
		"src/lib/index.js":           `export * from "./util";`,
		"node_modules/react/index.js": `module.exports = {}`,
	})
	a := newAnalyzer(t)
	scan, err := a.Scan(context.Background(), Options{Path: root})
	require.NoError(t, err)

	assert.Equal(t, lang.TypeScript, scan.Language)
	assert.Equal(t, []string{"src/app.tsx", "src/lib/index.js", "src/lib/util.ts"}, scan.Files)
	assert.Empty(t, scan.Diagnostics)

	e, ok := scan.Graph.Edge("src/app.tsx", "src/lib/util.ts")
	require.True(t, ok)
	assert.Equal(t, 2, e.Weight)

	back, ok := scan.Graph.Edge("src/lib/util.ts", "src/app.tsx")
	require.True(t, ok)
	assert.Equal(t, []extract.ImportKind{extract.KindDynamicImport}, back.Kinds)

	reexport, ok := scan.Graph.Edge("src/lib/index.js", "src/lib/util.ts")
	require.True(t, ok)
	assert.Equal(t, []extract.ImportKind{extract.KindReExport}, reexport.Kinds)

	cycles := graph.FindCycles(scan.Graph, graph.CycleOptions{})
	require.Len(t, cycles, 1)
	assert.Equal(t, 2, cycles[0].Length)

	arch, err := a.ArchitectureOf(context.Background(), scan)
	require.NoError(t, err)
	require.Len(t, arch.External, 1)
	assert.Equal(t, "react", arch.External[0].Name)
	assert.Equal(t, "^18.2.0", arch.External[0].Version)
	assert.Empty(t, arch.Unused)
}

func TestComplexity_TypeScriptBranchFree(t *testing.T) {
	root := pyProject(t, map[string]string{
		"flat.ts": "export function add(a: number, b: number) { return a + b }\n",
	})
	res, err := newAnalyzer(t).Complexity(context.Background(), Options{Path: root, Language: "typescript"})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Len(t, res.Files[0].Functions, 1)
	assert.Equal(t, 1, res.Files[0].Functions[0].Cyclomatic)
	assert.Empty(t, res.FunctionHotspots)
}
