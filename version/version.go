package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Dirty     bool
}

// Get returns the build information, completing values not set through
// -ldflags from the module build info.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		}
	}
	return info
}

// String renders the version as reported by "maple --version", e.g.
// "1.2.0 (a1b2c3d, built 2026-03-01T10:00:00Z)".
func (i Info) String() string {
	var extra []string
	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if i.Dirty {
			commit += "-dirty"
		}
		extra = append(extra, commit)
	}
	if i.BuildTime != "" {
		extra = append(extra, "built "+i.BuildTime)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(extra, ", "))
}

// Fields returns the information as run log fields.
func (i Info) Fields() map[string]any {
	fields := map[string]any{"version": i.Version}
	if i.GitCommit != "" {
		fields["commit"] = i.GitCommit
	}
	if i.GoVersion != "" {
		fields["go"] = i.GoVersion
	}
	return fields
}
