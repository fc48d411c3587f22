package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var ErrUnknownScene = errors.New("unknown scene")

// builtinScene describes a scene constructed in code
type builtinScene struct {
	info SceneInfo
	new  func() *Scene
}

var builtinScenes = map[string]builtinScene{
	"default": {
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Small sphere resting on a huge ground sphere",
		},
		new: NewDefaultScene,
	},
	"hd": {
		info: SceneInfo{
			ID:          "hd",
			Name:        "Default Scene HD",
			DisplayName: "Default Scene HD",
			Description: "The default scene at 1280x720 with 10 samples per pixel",
		},
		new: NewHDScene,
	},
	"spheregrid": {
		info: SceneInfo{
			ID:          "spheregrid",
			Name:        "Sphere Grid",
			DisplayName: "Sphere Grid",
			Description: "10x10 grid of small spheres on a curved ground",
		},
		new: NewSphereGridScene,
	},
}

// BuiltinSceneNames returns the sorted names of all built-in scenes
func BuiltinSceneNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltinScene creates a built-in scene by name
func NewBuiltinScene(name string) (*Scene, error) {
	builtin, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return builtin.new(), nil
}

// Load resolves a built-in scene name, a "pbrt:<name>" discovery ID, or a path to a .pbrt file
func Load(nameOrPath string) (*Scene, error) {
	if _, ok := builtinScenes[nameOrPath]; ok {
		return NewBuiltinScene(nameOrPath)
	}

	if strings.EqualFold(filepath.Ext(nameOrPath), ".pbrt") {
		return NewPBRTScene(nameOrPath)
	}

	if strings.HasPrefix(nameOrPath, pbrtIDPrefix) {
		scenes, err := ListPBRTScenes()
		if err != nil {
			return nil, err
		}
		for _, info := range scenes {
			if info.ID == nameOrPath {
				return NewPBRTScene(info.FilePath)
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, nameOrPath)
}
