package version

import (
	"runtime/debug"
	"strings"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/kbukum/livecoll"

// Version is set at build time with -ldflags. When empty, Get falls back
// to the module version recorded in the binary's build info.
var Version = ""

// Info describes the livecoll build linked into the running binary.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
	IsDirty   bool   `json:"is_dirty"`
	IsRelease bool   `json:"is_release"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns the version of livecoll linked into the running binary.
//
// In a consumer's binary livecoll is a dependency, so its version comes
// from the dependency list. When livecoll is the main module (its own
// tests and tools) the main module version and VCS stamps are used.
func Get() Info {
	info := Info{Version: Version}
	bi, ok := readBuildInfo()
	if ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "" {
			info.Version = moduleVersion(bi)
		}
		if bi.Main.Path == ModulePath {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					info.Revision = s.Value
					if len(info.Revision) > 7 {
						info.Revision = info.Revision[:7]
					}
				case "vcs.modified":
					info.IsDirty = s.Value == "true"
				}
			}
		}
	}
	if info.Version == "" || info.Version == "(devel)" {
		info.Version = "dev"
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty &&
		!strings.Contains(info.Version, "-0.") && !strings.HasSuffix(info.Version, "+dirty")
	return info
}

func moduleVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == ModulePath {
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// String returns the version with the short revision and a dirty marker
// when they are known.
func (i Info) String() string {
	parts := []string{i.Version}
	if i.Revision != "" {
		parts = append(parts, i.Revision)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}
