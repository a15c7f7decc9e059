// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package rtl433_test

import (
	"fmt"
	"testing"

	"github.com/absmach/rtlexporter/weather/rtl433"
	"github.com/stretchr/testify/assert"
)

const flexSpec = "m=OOK_PWM,s=500,l=1000,r=4000,bits>=72"

func TestArgs(t *testing.T) {
	cases := []struct {
		desc      string
		cfg       rtl433.Config
		flexModel string
		flexSpec  string
		args      []string
	}{
		{
			desc:      "default configuration with flex decoder",
			cfg:       rtl433.Config{Frequency: "433.92M", Protocols: []int{214}, SignalLevel: true},
			flexModel: "Flex-TH",
			flexSpec:  flexSpec,
			args:      []string{"-f", "433.92M", "-R", "214", "-M", "level", "-X", "n=Flex-TH," + flexSpec, "-F", "json"},
		},
		{
			desc:      "flex decoder disabled by empty spec",
			cfg:       rtl433.Config{Frequency: "433.92M", Protocols: []int{214}},
			flexModel: "Flex-TH",
			args:      []string{"-f", "433.92M", "-R", "214", "-F", "json"},
		},
		{
			desc: "several protocols",
			cfg:  rtl433.Config{Frequency: "868M", Protocols: []int{19, 214}},
			args: []string{"-f", "868M", "-R", "19", "-R", "214", "-F", "json"},
		},
		{
			desc: "no protocol selection",
			cfg:  rtl433.Config{Frequency: "433.92M"},
			args: []string{"-f", "433.92M", "-F", "json"},
		},
	}

	for _, tc := range cases {
		args := tc.cfg.Args(tc.flexModel, tc.flexSpec)
		assert.Equal(t, tc.args, args, fmt.Sprintf("%s: expected %v got %v\n", tc.desc, tc.args, args))
	}
}
