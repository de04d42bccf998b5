//go:build unix

package refbackend

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts cmd in its own process group before it starts,
// by setting Setpgid through syscall.SysProcAttr rather than keeping
// the portable os/exec default, so a caller that times out a
// RUN_EXTERNAL can reap the whole group with killGroup (a child
// process spawning its own children) instead of just the immediate PID.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killGroup kills the process group rooted at pid, for callers that
// need to tear down a RUN_EXTERNAL after a context cancellation.
func killGroup(pid int) error {
	return unix.Kill(-pid, unix.SIGKILL)
}
