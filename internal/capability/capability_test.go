package capability

import "testing"

func TestStaticHost(t *testing.T) {
	h := NewStaticHost(map[string]string{
		FeatureIndex: "1",
		FeatureWatch: "",
	})

	if !h.HasCapability(FeatureIndex) || !h.HasCapability(FeatureWatch) {
		t.Error("declared features should be present")
	}
	if h.HasCapability("unknown") {
		t.Error("undeclared feature should be absent")
	}

	if v, ok := h.CapabilityVersion(FeatureIndex); !ok || v != "1" {
		t.Errorf("version = %q, %v", v, ok)
	}
	if _, ok := h.CapabilityVersion(FeatureWatch); ok {
		t.Error("empty version means unversioned")
	}
	if _, ok := h.CapabilityVersion("unknown"); ok {
		t.Error("absent feature has no version")
	}
}
