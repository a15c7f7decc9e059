// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package rtl433

import "os/exec"

func detach(*exec.Cmd) {}
