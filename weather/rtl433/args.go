// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package rtl433

import (
	"fmt"
	"strconv"
)

// Config describes how rtl_433 is started.
type Config struct {
	Path        string `env:"PATH"         envDefault:"rtl_433"`
	Frequency   string `env:"FREQUENCY"    envDefault:"433.92M"`
	Protocols   []int  `env:"PROTOCOLS"    envDefault:"214"     envSeparator:","`
	SignalLevel bool   `env:"SIGNAL_LEVEL" envDefault:"true"`
}

// Args returns the rtl_433 command line. A flex decoder named flexModel is
// added when both flexModel and flexSpec are set.
func (c Config) Args(flexModel, flexSpec string) []string {
	args := []string{"-f", c.Frequency}
	for _, p := range c.Protocols {
		args = append(args, "-R", strconv.Itoa(p))
	}
	if c.SignalLevel {
		args = append(args, "-M", "level")
	}
	if flexModel != "" && flexSpec != "" {
		args = append(args, "-X", fmt.Sprintf("n=%s,%s", flexModel, flexSpec))
	}
	return append(args, "-F", "json")
}
