// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package env loads service configuration from environment variables.
package env

import "github.com/caarlos0/env/v7"

// Options narrows the caarlos0/env options to the ones the services use.
type Options struct {
	// Environment keys and values that will be accessible for the service
	Environment map[string]string

	// RequiredIfNoDef automatically sets all env as required if they do not declare 'envDefault'
	RequiredIfNoDef bool

	// Prefix define a prefix for each key
	Prefix string
}

// Parse fills v from the environment, applying opts in order.
func Parse(v interface{}, opts ...Options) error {
	altOpts := make([]env.Options, 0, len(opts))
	for _, opt := range opts {
		altOpts = append(altOpts, env.Options{
			Environment:     opt.Environment,
			RequiredIfNoDef: opt.RequiredIfNoDef,
			Prefix:          opt.Prefix,
		})
	}

	return env.Parse(v, altOpts...)
}
