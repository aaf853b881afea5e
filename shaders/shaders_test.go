package shaders

import (
	"os"
	"path/filepath"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/pelletier/go-toml/v2"
)

func TestStageFlagFromString(t *testing.T) {
	cases := map[string]vk.ShaderStageFlagBits{
		"vertex":   vk.ShaderStageVertexBit,
		"fragment": vk.ShaderStageFragmentBit,
		"compute":  vk.ShaderStageComputeBit,
	}
	for name, want := range cases {
		got, err := stageFlagFromString(name)
		if err != nil {
			t.Fatalf("stageFlagFromString(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("stageFlagFromString(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := stageFlagFromString("geometry"); err == nil {
		t.Fatalf("expected error for unsupported stage")
	}
}

func TestManifestUnmarshal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "basic.toml")
	contents := `
name = "basic"

[[stage]]
stage = "vertex"
path = "basic.vert.spv"

[[stage]]
stage = "fragment"
path = "basic.frag.spv"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Name != "basic" {
		t.Fatalf("name = %q, want basic", m.Name)
	}
	if len(m.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(m.Stages))
	}
	if m.Stages[0].Stage != "vertex" || m.Stages[1].Stage != "fragment" {
		t.Fatalf("unexpected stage order: %+v", m.Stages)
	}
}

func TestSliceToUint32(t *testing.T) {
	// SPIR-V magic number, little-endian.
	b := []byte{0x03, 0x02, 0x23, 0x07}
	got := sliceToUint32(b)
	if len(got) != 1 || got[0] != 0x07230203 {
		t.Fatalf("sliceToUint32 = %#x, want [0x07230203]", got)
	}
}
