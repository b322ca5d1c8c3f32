//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with its default configuration.
func (Run) Testbed() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/passgraph", withArgs("-config", "testbed/config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
