package depm

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"chimera/common"
	"chimera/report"

	"github.com/pelletier/go-toml"
)

// tomlModule is the TOML representation of a module manifest.
type tomlModule struct {
	Name           string `toml:"name"`
	ShouldCache    bool   `toml:"caching"`
	ChimeraVersion string `toml:"chimera-version"`
}

// LoadModule loads the module rooted at the directory given by abspath.  It
// reports all errors it encounters and returns false if loading fails.
func LoadModule(abspath string) (*ChimModule, bool) {
	modFilePath := filepath.Join(abspath, common.ChimeraManifestName)

	f, err := os.Open(modFilePath)
	if err != nil {
		report.ReportFatal("unable to open module file at %s: %s", modFilePath, err)
	}
	defer f.Close()

	tomlMod := &tomlModule{}
	if err := toml.NewDecoder(f).Decode(tomlMod); err != nil {
		report.ReportModuleError(fmt.Sprintf("<module at %s>", abspath), "error parsing module file: %s", err)
		return nil, false
	}

	if !validateModule(tomlMod, abspath) {
		return nil, false
	}

	return &ChimModule{
		ID:          GenerateIDFromPath(abspath),
		Name:        tomlMod.Name,
		AbsPath:     abspath,
		SubPackages: make(map[string]*ChimPackage),
		ShouldCache: tomlMod.ShouldCache,
	}, true
}

// validateModule checks the loaded manifest for well-formedness.
func validateModule(tomlMod *tomlModule, abspath string) bool {
	if tomlMod.Name == "" {
		report.ReportModuleError(fmt.Sprintf("<module at %s>", abspath), "module must have a name")
		return false
	}

	if !IsValidIdentifier(tomlMod.Name) {
		report.ReportModuleError(tomlMod.Name, "module name must be a valid identifier")
		return false
	}

	if tomlMod.ChimeraVersion != common.ChimeraVersion {
		report.ReportModuleWarning(tomlMod.Name, "module expects chimera version `%s` but current version is `%s`", tomlMod.ChimeraVersion, common.ChimeraVersion)
	}

	return true
}

// InitModule creates a new module manifest named name in the directory given
// by abspath.  It fails if a manifest already exists there.
func InitModule(name, abspath string, caching bool) error {
	if !IsValidIdentifier(name) {
		return fmt.Errorf("module name `%s` is not a valid identifier", name)
	}

	modFilePath := filepath.Join(abspath, common.ChimeraManifestName)

	if _, err := os.Stat(modFilePath); err == nil {
		return fmt.Errorf("module file already exists at %s", modFilePath)
	}

	f, err := os.Create(modFilePath)
	if err != nil {
		return fmt.Errorf("unable to create module file: %w", err)
	}
	defer f.Close()

	tomlMod := &tomlModule{
		Name:           name,
		ShouldCache:    caching,
		ChimeraVersion: common.ChimeraVersion,
	}

	if err := toml.NewEncoder(f).Encode(tomlMod); err != nil {
		return fmt.Errorf("unable to write module file: %w", err)
	}

	return nil
}

// GenerateIDFromPath deterministically produces an ID from an absolute path.
func GenerateIDFromPath(abspath string) uint {
	h := fnv.New32a()
	h.Write([]byte(abspath))
	return uint(h.Sum32())
}

// IsValidIdentifier returns whether name could be a Chimera identifier.
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for i, c := range name {
		if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' {
			continue
		}

		if i > 0 && '0' <= c && c <= '9' {
			continue
		}

		return false
	}

	return true
}
