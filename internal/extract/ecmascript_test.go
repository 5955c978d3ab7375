//go:build cgo

package extract

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func extractJS(t *testing.T, rel, src string) *FileResult {
	t.Helper()
	res, err := NewECMAScript().ExtractSource(context.Background(), rel, []byte(src))
	if err != nil {
		t.Fatalf("ExtractSource() error = %v", err)
	}
	return res
}

func importsByKind(imports []Import) map[ImportKind][]string {
	out := map[ImportKind][]string{}
	for _, imp := range imports {
		out[imp.Kind] = append(out[imp.Kind], imp.Specifier)
	}
	return out
}

func TestECMAScript_Imports(t *testing.T) {
	res := extractJS(t, "src/app.ts", `import React, { useState, useEffect } from "react";
import * as path from 'node:path';
import "./polyfill";
import type { Config } from "./config";
export { helper, other as renamed } from "./helpers";
export * from "./all";
const fs = require("fs");
const { a, b } = require("./ab");
async function load() {
  const mod = await import("./lazy");
  return mod;
}
`)

	got := importsByKind(res.Module.Imports)
	want := map[ImportKind][]string{
		KindImport:        {"react", "node:path", "./polyfill", "./config"},
		KindReExport:      {"./helpers", "./all"},
		KindRequire:       {"fs", "./ab"},
		KindDynamicImport: {"./lazy"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("imports = %v, want %v", got, want)
	}

	names := map[string]int{}
	for _, imp := range res.Module.Imports {
		names[imp.Specifier] = imp.Names
	}
	wantNames := map[string]int{
		"react": 3, "node:path": 1, "./polyfill": 1, "./config": 1,
		"./helpers": 2, "./all": 1, "fs": 1, "./ab": 2, "./lazy": 1,
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}

	if !reflect.DeepEqual(res.Module.Exports, []string{"helper", "renamed"}) {
		t.Errorf("exports = %v", res.Module.Exports)
	}
}

func TestECMAScript_Exports(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		src  string
		want []string
	}{
		{
			name: "esm declarations",
			rel:  "a.ts",
			src: `export const A = 1, B = 2;
export function f() {}
export class C {}
export interface I {}
export type T = string;
export enum E { X }
const local = 3;
export { local as aliased };
export default f;
`,
			want: []string{"A", "B", "C", "E", "I", "T", "aliased", "default", "f"},
		},
		{
			name: "commonjs object",
			rel:  "b.js",
			src: `function run() {}
module.exports = { run, stop: () => {}, "quoted": 1 };
`,
			want: []string{"default", "quoted", "run", "stop"},
		},
		{
			name: "commonjs properties",
			rel:  "c.cjs",
			src: `exports.one = 1;
module.exports.two = 2;
`,
			want: []string{"one", "two"},
		},
		{
			name: "namespace re-export",
			rel:  "d.mjs",
			src:  `export * as tools from "./tools";`,
			want: []string{"tools"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractJS(t, tt.rel, tt.src)
			if !reflect.DeepEqual(res.Module.Exports, tt.want) {
				t.Errorf("exports = %v, want %v", res.Module.Exports, tt.want)
			}
		})
	}
}

func TestECMAScript_Complexity(t *testing.T) {
	res := extractJS(t, "src/logic.js", `function simple(a) {
  return a;
}

function branchy(x, y, z) {
  if (x && y) {
    for (const k of z) {
      if (k || x) { continue; }
    }
  } else if (y) {
    while (x) { x--; }
  }
  switch (x) {
    case 1: break;
    case 2: break;
    default: break;
  }
  try { risky(); } catch (e) { return x ?? y; }
  return x ? 1 : 2;
}

const outer = (a, b) => {
  const inner = () => (a ? 1 : 0);
  return inner();
};

class Box {
  open(lid) {
    do { lid--; } while (lid > 0);
  }
}
`)

	got := map[string]int{}
	for _, f := range res.Complexity.Functions {
		got[f.Name] = f.Cyclomatic
	}
	// branchy: 1 + if + && + for + if + || + else-if + while + 2 cases + catch + ?? + ternary
	want := map[string]int{"simple": 1, "branchy": 13, "outer": 1, "inner": 2, "open": 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("complexities = %v, want %v", got, want)
	}

	for _, f := range res.Complexity.Functions {
		switch f.Name {
		case "branchy":
			if f.Params != 3 {
				t.Errorf("branchy params = %d, want 3", f.Params)
			}
			if f.MaxNesting != 3 {
				t.Errorf("branchy nesting = %d, want 3", f.MaxNesting)
			}
			if f.StartLine != 5 || f.EndLine != 20 {
				t.Errorf("branchy lines = %d-%d, want 5-20", f.StartLine, f.EndLine)
			}
		case "outer":
			if f.Params != 2 {
				t.Errorf("outer params = %d, want 2", f.Params)
			}
		}
	}
	if res.Complexity.FunctionCount != 5 {
		t.Errorf("function count = %d, want 5", res.Complexity.FunctionCount)
	}
}

func TestECMAScript_NestingUnwinds(t *testing.T) {
	res := extractJS(t, "src/walk.js", `function first(a) {
  if (a) {
    if (a > 1) { a--; }
  }
  if (a) { a++; }
  const cb = () => {
    if (a) { return 1; }
    return 0;
  };
  return cb;
}

function second(b) {
  if (b) { return b; }
  return 0;
}
`)
	type shape struct{ cyclomatic, nesting int }
	got := map[string]shape{}
	for _, f := range res.Complexity.Functions {
		got[f.Name] = shape{f.Cyclomatic, f.MaxNesting}
	}
	want := map[string]shape{
		"first":  {4, 2},
		"cb":     {2, 1},
		"second": {2, 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("functions = %v, want %v", got, want)
	}
}

func TestECMAScript_DeepNesting(t *testing.T) {
	const depth = 3000
	src := "function deep(x) {\n" +
		strings.Repeat("if (x) {\n", depth) +
		strings.Repeat("}\n", depth) +
		"}\n"
	res := extractJS(t, "src/deep.js", src)
	if len(res.Complexity.Functions) != 1 {
		t.Fatalf("functions = %d, want 1", len(res.Complexity.Functions))
	}
	fn := res.Complexity.Functions[0]
	if fn.Cyclomatic != depth+1 {
		t.Errorf("cyclomatic = %d, want %d", fn.Cyclomatic, depth+1)
	}
	if fn.MaxNesting != depth {
		t.Errorf("nesting = %d, want %d", fn.MaxNesting, depth)
	}
}

func TestECMAScript_MalformedSource(t *testing.T) {
	res := extractJS(t, "broken.ts", `import { a } from "./a";
function (((( {
import b from "./b";
`)
	specs := map[string]bool{}
	for _, imp := range res.Module.Imports {
		specs[imp.Specifier] = true
	}
	if !specs["./a"] {
		t.Errorf("expected ./a to survive a syntax error, got %v", res.Module.Imports)
	}
}

func TestECMAScript_TSX(t *testing.T) {
	res := extractJS(t, "ui/Button.tsx", `import React from "react";
export const Button = ({ label }: { label: string }) => <button>{label}</button>;
`)
	if len(res.Module.Imports) != 1 || res.Module.Imports[0].Specifier != "react" {
		t.Errorf("imports = %v", res.Module.Imports)
	}
	if !reflect.DeepEqual(res.Module.Exports, []string{"Button"}) {
		t.Errorf("exports = %v", res.Module.Exports)
	}
}
