package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	burntsushi "github.com/BurntSushi/toml"
	"github.com/pelletier/go-toml/v2"
)

func parsePackageJSON(data []byte) (*Manifest, error) {
	var pkg struct {
		Name                 string            `json:"name"`
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	m := &Manifest{Name: pkg.Name}
	add := func(deps map[string]string, scope Scope) {
		for name, version := range deps {
			m.Dependencies = append(m.Dependencies, Dependency{
				Name: name, Version: version, Scope: scope, Source: PackageJSON,
			})
		}
	}
	add(pkg.Dependencies, ScopeRuntime)
	add(pkg.DevDependencies, ScopeDev)
	add(pkg.PeerDependencies, ScopePeer)
	add(pkg.OptionalDependencies, ScopeOptional)
	return m, nil
}

// pep508Re splits "requests[socks]>=2.0; python_version>'3'" into name and
// version specifier.
var pep508Re = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*(.*)$`)

func parsePEP508(s string, scope Scope, source Kind) (Dependency, bool) {
	s, _, _ = strings.Cut(s, ";")
	s = strings.TrimSpace(s)
	m := pep508Re.FindStringSubmatch(s)
	if m == nil {
		return Dependency{}, false
	}
	version := strings.TrimSpace(m[2])
	version = strings.TrimPrefix(version, "(")
	version = strings.TrimSuffix(version, ")")
	return Dependency{Name: m[1], Version: version, Scope: scope, Source: source}, true
}

func parsePyProject(data []byte) (*Manifest, error) {
	var doc struct {
		Project struct {
			Name                 string              `toml:"name"`
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name            string         `toml:"name"`
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
				Group           map[string]struct {
					Dependencies map[string]any `toml:"dependencies"`
				} `toml:"group"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	m := &Manifest{Name: doc.Project.Name}
	if m.Name == "" {
		m.Name = doc.Tool.Poetry.Name
	}
	for _, spec := range doc.Project.Dependencies {
		if d, ok := parsePEP508(spec, ScopeRuntime, PyProject); ok {
			m.Dependencies = append(m.Dependencies, d)
		}
	}
	for _, specs := range doc.Project.OptionalDependencies {
		for _, spec := range specs {
			if d, ok := parsePEP508(spec, ScopeOptional, PyProject); ok {
				m.Dependencies = append(m.Dependencies, d)
			}
		}
	}

	addTable := func(deps map[string]any, scope Scope) {
		for name, v := range deps {
			if strings.EqualFold(name, "python") {
				continue
			}
			m.Dependencies = append(m.Dependencies, Dependency{
				Name: name, Version: versionOf(v), Scope: scope, Source: PyProject,
			})
		}
	}
	addTable(doc.Tool.Poetry.Dependencies, ScopeRuntime)
	addTable(doc.Tool.Poetry.DevDependencies, ScopeDev)
	for _, g := range doc.Tool.Poetry.Group {
		addTable(g.Dependencies, ScopeDev)
	}
	return m, nil
}

func parsePipfile(data []byte) (*Manifest, error) {
	var doc struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if _, err := burntsushi.Decode(string(data), &doc); err != nil {
		return nil, err
	}

	m := &Manifest{}
	for name, v := range doc.Packages {
		m.Dependencies = append(m.Dependencies, Dependency{
			Name: name, Version: versionOf(v), Scope: ScopeRuntime, Source: Pipfile,
		})
	}
	for name, v := range doc.DevPackages {
		m.Dependencies = append(m.Dependencies, Dependency{
			Name: name, Version: versionOf(v), Scope: ScopeDev, Source: Pipfile,
		})
	}
	return m, nil
}

// versionOf reads `"^1.0"` or `{ version = "^1.0", ... }` table values.
func versionOf(v any) string {
	switch t := v.(type) {
	case string:
		if t == "*" {
			return ""
		}
		return t
	case map[string]any:
		if s, ok := t["version"].(string); ok && s != "*" {
			return s
		}
	}
	return ""
}

func parseRequirements(data []byte) (*Manifest, error) {
	m := &Manifest{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if strings.Contains(line, "://") {
			continue
		}
		d, ok := parsePEP508(line, ScopeRuntime, Requirements)
		if !ok {
			return nil, fmt.Errorf("line %d: cannot parse %q", lineNo, line)
		}
		m.Dependencies = append(m.Dependencies, d)
	}
	return m, sc.Err()
}
