// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package rtl433

import (
	"os/exec"
	"syscall"
)

// detach moves the child into its own process group so terminal signals
// reach only the exporter, which then stops rtl_433 through Close.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
