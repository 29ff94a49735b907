/*
Copyright 2025 Nuvix Contributors. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package postgres

import (
	"fmt"
	"os"

	"github.com/nuvix-dev/nuvix/embedded/logger"
	"github.com/nuvix-dev/nuvix/embedded/schema"
	"github.com/nuvix-dev/nuvix/pkg/cache"
)

const (
	DefaultNamespace     = "nuvix"
	DefaultMaxAttributes = 1000
	DefaultMaxIndexes    = 64
	// DefaultMaxIndexKeyLength is the btree index row budget of a stock
	// Postgres page layout.
	DefaultMaxIndexKeyLength = 2704
)

// Options configures the Postgres-backed schema store.
type Options struct {
	dsn               string
	namespace         string
	maxAttributes     int
	maxIndexes        int
	maxIndexKeyLength int
	cache             cache.Cache
	logger            logger.Logger
}

func DefaultOptions() *Options {
	return &Options{
		namespace:         DefaultNamespace,
		maxAttributes:     DefaultMaxAttributes,
		maxIndexes:        DefaultMaxIndexes,
		maxIndexKeyLength: DefaultMaxIndexKeyLength,
		cache:             cache.Noop{},
		logger:            logger.NewSimpleLogger("nuvix/postgres", os.Stderr),
	}
}

func (opts *Options) WithDSN(dsn string) *Options {
	opts.dsn = dsn
	return opts
}

// WithNamespace prefixes every table this store creates.
func (opts *Options) WithNamespace(namespace string) *Options {
	opts.namespace = namespace
	return opts
}

func (opts *Options) WithMaxAttributes(maxAttributes int) *Options {
	opts.maxAttributes = maxAttributes
	return opts
}

func (opts *Options) WithMaxIndexes(maxIndexes int) *Options {
	opts.maxIndexes = maxIndexes
	return opts
}

func (opts *Options) WithMaxIndexKeyLength(maxIndexKeyLength int) *Options {
	opts.maxIndexKeyLength = maxIndexKeyLength
	return opts
}

func (opts *Options) WithCache(c cache.Cache) *Options {
	opts.cache = c
	return opts
}

func (opts *Options) WithLogger(l logger.Logger) *Options {
	opts.logger = l
	return opts
}

func (opts *Options) Validate() error {
	if opts == nil {
		return fmt.Errorf("%w: nil options", schema.ErrIllegalArguments)
	}

	if opts.dsn == "" {
		return fmt.Errorf("%w: missing dsn", schema.ErrIllegalArguments)
	}

	if opts.namespace == "" {
		return fmt.Errorf("%w: missing namespace", schema.ErrIllegalArguments)
	}

	return nil
}
