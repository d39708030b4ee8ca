//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// engine runs the built binary with the given arguments.
func engine(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Refresh rebuilds every cache: dedupe scan, graph build, source scan,
// coverage audit, and monitor scan, then snapshots them into SQLite.
func Refresh() error {
	mg.Deps(Build)
	steps := [][]string{
		{"dedupe", "scan"},
		{"graph", "build"},
		{"sources", "scan"},
		{"coverage", "audit"},
		{"monitor", "scan"},
		{"export"},
	}
	for _, step := range steps {
		if err := engine(step...); err != nil {
			return err
		}
	}
	return nil
}

// Health runs a monitor scan and prints the suggestions.
func Health() error {
	mg.Deps(Build)
	if err := engine("monitor", "scan"); err != nil {
		return err
	}
	return engine("monitor", "suggest")
}
