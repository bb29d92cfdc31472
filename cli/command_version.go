package cli

import "fmt"

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("sqlscript v0.1.0")
	return nil
}
