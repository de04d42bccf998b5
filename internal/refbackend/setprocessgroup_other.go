//go:build !unix

package refbackend

import "os/exec"

// setProcessGroup is a no-op off Unix: Setpgid has no Windows
// equivalent exposed the same way, and this reference backend is only
// ever exercised in CI on Unix runners.
func setProcessGroup(cmd *exec.Cmd) {}
