// Package capability answers which optional host features are available.
// All host introspection goes through the Host interface so the rest of
// the code never probes the environment directly.
package capability

// Host reports the optional features a magpie host provides.
type Host interface {
	// HasCapability reports whether the named feature is available.
	HasCapability(name string) bool

	// CapabilityVersion returns the feature's version string.
	// ok is false when the feature is absent or unversioned.
	CapabilityVersion(name string) (version string, ok bool)
}

// Feature names advertised by the CLI host.
const (
	FeatureIndex = "index"
	FeatureWatch = "watch"
)

// StaticHost is a map-backed Host with a fixed feature set.
type StaticHost struct {
	features map[string]string
}

// NewStaticHost builds a StaticHost from feature name to version.
// An empty version marks the feature present but unversioned.
func NewStaticHost(features map[string]string) *StaticHost {
	copied := make(map[string]string, len(features))
	for name, version := range features {
		copied[name] = version
	}
	return &StaticHost{features: copied}
}

func (h *StaticHost) HasCapability(name string) bool {
	_, ok := h.features[name]
	return ok
}

func (h *StaticHost) CapabilityVersion(name string) (string, bool) {
	version, ok := h.features[name]
	if !ok || version == "" {
		return "", false
	}
	return version, true
}
