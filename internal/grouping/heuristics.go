package grouping

import (
	"regexp"

	"depscope/internal/paths"
)

type bucket struct {
	name    string
	segment *regexp.Regexp
}

// Feature bucket names.
const (
	FeatureAPI        = "api"
	FeatureModels     = "models"
	FeatureServices   = "services"
	FeatureUtilities  = "utilities"
	FeatureUI         = "ui"
	FeatureTests      = "tests"
	FeatureConfig     = "config"
	FeatureMiddleware = "middleware"
	FeatureData       = "data"
	FeatureOther      = "other"
)

var featureBuckets = []bucket{
	{FeatureAPI, regexp.MustCompile(`^(api|apis|routes?|routers?|controllers?|endpoints?|handlers?|graphql|rest|rpc)$`)},
	{FeatureModels, regexp.MustCompile(`^(models?|entities|entity|schemas?|types|dto|dtos)$`)},
	{FeatureServices, regexp.MustCompile(`^(services?|providers?|use-?cases?|managers?|domain)$`)},
	{FeatureUtilities, regexp.MustCompile(`^(utils?|utilities|helpers?|lib|libs|common|shared|tools)$`)},
	{FeatureUI, regexp.MustCompile(`^(components?|views?|pages?|screens?|ui|layouts?|widgets?|templates?|hooks|styles)$`)},
	{FeatureTests, regexp.MustCompile(`^(tests?|__tests__|specs?|e2e|fixtures?|__mocks__|mocks?)$`)},
	{FeatureConfig, regexp.MustCompile(`^(config|configs|configuration|settings|env)$`)},
	{FeatureMiddleware, regexp.MustCompile(`^(middlewares?|interceptors?|guards?|plugins?)$`)},
	{FeatureData, regexp.MustCompile(`^(data|db|database|repositor(y|ies)|migrations?|dao|stores?|persistence)$`)},
}

// Layer names.
const (
	LayerPresentation   = "presentation"
	LayerBusiness       = "business"
	LayerData           = "data"
	LayerInfrastructure = "infrastructure"
	LayerUtility        = "utility"
	LayerUnknown        = "unknown"
)

// Layers lists the known layers from top to bottom.
var Layers = []string{LayerPresentation, LayerBusiness, LayerData, LayerInfrastructure, LayerUtility}

var layerBuckets = []bucket{
	{LayerPresentation, regexp.MustCompile(`^(components?|views?|pages?|screens?|ui|layouts?|widgets?|templates?|hooks|controllers?|routes?|routers?|handlers?|api|apis|graphql|cli|cmd)$`)},
	{LayerBusiness, regexp.MustCompile(`^(services?|domain|use-?cases?|core|business|logic|managers?|features?|workflows?)$`)},
	{LayerData, regexp.MustCompile(`^(models?|entities|entity|schemas?|db|database|repositor(y|ies)|dao|migrations?|stores?|persistence|data)$`)},
	{LayerInfrastructure, regexp.MustCompile(`^(infra|infrastructure|config|configs|adapters?|clients?|gateways?|middlewares?|providers?|integrations?|server|transport)$`)},
	{LayerUtility, regexp.MustCompile(`^(utils?|utilities|helpers?|lib|libs|common|shared|tools|types)$`)},
}

var (
	testFileRe   = regexp.MustCompile(`(\.(test|spec)\.[cm]?[jt]sx?$)|(^test_.*\.py$)|(_test\.py$)|(^conftest\.py$)`)
	configFileRe = regexp.MustCompile(`(\.config\.[cm]?[jt]s$)|(^settings\.py$)|(^config\.(py|[jt]s)$)`)
)

// FeatureOf returns the feature bucket of a file. Test and config file
// names win over directories; otherwise the deepest matching directory
// decides.
func FeatureOf(file string) string {
	base := baseName(file)
	if testFileRe.MatchString(base) {
		return FeatureTests
	}
	if configFileRe.MatchString(base) {
		return FeatureConfig
	}
	return match(featureBuckets, lowerSegments(file), FeatureOther)
}

// LayerOf returns the architectural layer of a file.
func LayerOf(file string) string {
	return match(layerBuckets, lowerSegments(file), LayerUnknown)
}

func match(buckets []bucket, segments []string, residual string) string {
	for _, seg := range segments {
		for _, b := range buckets {
			if b.segment.MatchString(seg) {
				return b.name
			}
		}
	}
	return residual
}

// ByFeature groups files into feature buckets plus a residual "other".
func ByFeature(files []string) []Group {
	return collect(files, FeatureOf)
}

// ByLayer groups files into architectural layers plus a residual "unknown".
func ByLayer(files []string) []Group {
	return collect(files, LayerOf)
}

// Style is a coarse architecture label.
type Style string

const (
	StyleLayered        Style = "layered"
	StyleFeatureSliced  Style = "feature-sliced"
	StyleComponentBased Style = "component-based"
	StyleFlat           Style = "flat"
	StyleMixed          Style = "mixed"
)

// DetectStyle labels the project from its directory conventions and the
// layers found. A project with at most one directory is flat; a features/
// directory means feature-sliced; components/ next to pages/ or hooks/
// means component-based; three or more populated layers mean layered.
func DetectStyle(files []string, layers []Group) Style {
	dirs := make(map[string]bool)
	names := make(map[string]bool)
	for _, f := range files {
		dirs[paths.DirOf(f)] = true
		for _, s := range lowerSegments(f) {
			names[s] = true
		}
	}

	switch {
	case len(dirs) <= 1:
		return StyleFlat
	case names["features"]:
		return StyleFeatureSliced
	case names["components"] && (names["pages"] || names["hooks"]):
		return StyleComponentBased
	}

	populated := 0
	for _, g := range layers {
		if g.Name != LayerUnknown && len(g.Members) > 0 {
			populated++
		}
	}
	if populated >= 3 {
		return StyleLayered
	}
	return StyleMixed
}
