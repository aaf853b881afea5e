// Package shaders implements SPIR-V shader module intake and hot reload
// (L7c): reading precompiled .spv binaries named by a TOML manifest
// (continuing engine/assets/loaders/shader.go's TOML-config convention) and
// rebuilding vk.ShaderModules when fsnotify reports a manifest change.
package shaders

import (
	"encoding/binary"
	"os"

	vk "github.com/goki/vulkan"
	"github.com/pelletier/go-toml/v2"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/host"
)

// sliceToUint32 reinterprets a SPIR-V binary blob (little-endian per the
// SPIR-V spec) as the []uint32 vk.ShaderModuleCreateInfo.PCode expects.
func sliceToUint32(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

// StageSpec names one shader stage's compiled SPIR-V file.
type StageSpec struct {
	Stage vk.ShaderStageFlagBits `toml:"-"`
	Name  string                 `toml:"name"`
	Path  string                 `toml:"path"`
}

// Manifest is the TOML shape a shader is declared in, mirroring the
// teacher's tmpShaderConfig but trimmed to what spec.md's Graphics/Compute
// creation actually needs: a name plus one SPIR-V file per stage.
type Manifest struct {
	Name   string `toml:"name"`
	Stages []struct {
		Stage string `toml:"stage"`
		Path  string `toml:"path"`
	} `toml:"stage"`
}

func stageFlagFromString(s string) (vk.ShaderStageFlagBits, error) {
	switch s {
	case "vertex":
		return vk.ShaderStageVertexBit, nil
	case "fragment":
		return vk.ShaderStageFragmentBit, nil
	case "compute":
		return vk.ShaderStageComputeBit, nil
	default:
		return 0, core.NewErrorf(core.ErrorKindShaderCompileError, "unknown shader stage %q", s)
	}
}

type module struct {
	path   string
	stage  vk.ShaderStageFlagBits
	handle vk.ShaderModule
}

type shaderObject struct {
	name    string
	modules []*module
}

// Store owns every compiled shader object and resolves them to
// PipelineShaderStageCreateInfo slices for the renderer (implements
// renderer.ShaderProvider).
type Store struct {
	host    *host.Host
	shaders *core.Slotmap[*shaderObject]
}

func New(h *host.Host) *Store {
	return &Store{host: h, shaders: core.NewSlotmap[*shaderObject]()}
}

// LoadManifest reads the TOML manifest at path, compiles each referenced
// .spv file into a vk.ShaderModule, and registers the result under id. Both
// path and the manifest's stage paths are opened as given; they are not
// joined with config.EngineConfig.ShaderSourceDir.
func (s *Store) LoadManifest(id core.ID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.NewError(core.ErrorKindShaderCompileError, err)
	}
	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return core.NewError(core.ErrorKindShaderCompileError, err)
	}

	obj := &shaderObject{name: manifest.Name}
	for _, st := range manifest.Stages {
		flag, err := stageFlagFromString(st.Stage)
		if err != nil {
			return err
		}
		m, err := s.compile(flag, st.Path)
		if err != nil {
			return err
		}
		obj.modules = append(obj.modules, m)
	}
	s.shaders.Set(id, obj)
	core.LogInfo("shader %q loaded (%d stages)", manifest.Name, len(obj.modules))
	return nil
}

func (s *Store) compile(stage vk.ShaderStageFlagBits, path string) (*module, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(core.ErrorKindShaderCompileError, err)
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceToUint32(code),
	}
	var handle vk.ShaderModule
	if res := vk.CreateShaderModule(s.host.Device, &info, s.host.Allocator, &handle); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindShaderCompileError, "vkCreateShaderModule(%s) failed: %d", path, res)
	}
	return &module{path: path, stage: stage, handle: handle}, nil
}

// Stages implements renderer.ShaderProvider.
func (s *Store) Stages(id core.ID) ([]vk.PipelineShaderStageCreateInfo, error) {
	obj, ok := s.shaders.Get(id)
	if !ok {
		return nil, core.NewErrorf(core.ErrorKindInvalidId, "shader stages: unknown shader %d", id)
	}
	out := make([]vk.PipelineShaderStageCreateInfo, len(obj.modules))
	for i, m := range obj.modules {
		out[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  m.stage,
			Module: m.handle,
			PName:  "main\x00",
		}
	}
	return out, nil
}

// Delete destroys the shader modules registered under id.
func (s *Store) Delete(id core.ID) {
	obj, ok := s.shaders.Get(id)
	if !ok {
		return
	}
	for _, m := range obj.modules {
		vk.DestroyShaderModule(s.host.Device, m.handle, s.host.Allocator)
	}
	s.shaders.Delete(id)
}
