package main

import (
	"context"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/lehigh-university-libraries/pdfscan/cmd"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = ""
	commit  = ""
)

func main() {
	info, _ := debug.ReadBuildInfo()
	v, c := buildVersion(version, commit, info)

	if err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(v),
		fang.WithCommit(c),
		// SIGTERM lets serve shut down cleanly under a process manager.
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// buildVersion prefers linker-set values, then the module version and VCS
// revision recorded by the Go toolchain.
func buildVersion(version, commit string, info *debug.BuildInfo) (string, string) {
	if info != nil {
		if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			if commit == "" && s.Key == "vcs.revision" {
				commit = s.Value
			}
		}
	}
	if version == "" {
		version = "dev"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return version, commit
}
