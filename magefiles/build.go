//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// buildShaders compiles every .vert/.frag/.comp GLSL source under
// shaders/assets into the .spv binaries the manifests in the same
// directory reference, continuing the teacher's hardcoded glslc pass but
// discovering sources instead of naming each shader by hand.
func buildShaders() error {
	fmt.Println("Build shaders...")
	vkSDKPath := os.Getenv("VULKAN_SDK")
	glslc := fmt.Sprintf("%s/bin/glslc", vkSDKPath)

	return filepath.WalkDir("shaders/assets", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if filepath.Ext(path) == ".spv" {
			return nil
		}
		stage, ok := shaderStageFor(path)
		if !ok {
			return nil
		}
		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".spv"
		_, err = executeCmd(glslc, withArgs(fmt.Sprintf("-fshader-stage=%s", stage), path, "-o", out), withStream())
		return err
	})
}

func shaderStageFor(path string) (string, bool) {
	switch filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))) {
	case ".vert":
		return "vertex", true
	case ".frag":
		return "fragment", true
	case ".comp":
		return "compute", true
	default:
		return "", false
	}
}

// Shaders compiles every GLSL shader source into SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}
