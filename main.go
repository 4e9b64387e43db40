// The main package for the keyscout executable.
package main

import (
	"github.com/keyscout/keyscout/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
