//go:build windows

package shellproc

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// detach starts the child in a new process group without a console window.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
		HideWindow:    true,
	}
}

// processAlive asks tasklist whether pid is running.
func processAlive(pid int) bool {
	// #nosec G204 - pid read from our own bookkeeping file
	out, err := exec.Command("tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/NH").Output()
	return err == nil && strings.Contains(string(out), strconv.Itoa(pid))
}

// terminate kills the process tree rooted at pid.
func terminate(pid int) error {
	// #nosec G204 - pid read from our own bookkeeping file
	if out, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/T", "/F").CombinedOutput(); err != nil {
		return fmt.Errorf("taskkill: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
