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

package memory

const (
	DefaultMaxAttributes = 1000
	DefaultMaxIndexes    = 64
	// DefaultMaxIndexKeyLength matches the composite key budget of common
	// InnoDB deployments.
	DefaultMaxIndexKeyLength = 768
)

// Options configures the in-memory store limits.
type Options struct {
	maxAttributes     int
	maxIndexes        int
	maxIndexKeyLength int
}

func DefaultOptions() *Options {
	return &Options{
		maxAttributes:     DefaultMaxAttributes,
		maxIndexes:        DefaultMaxIndexes,
		maxIndexKeyLength: DefaultMaxIndexKeyLength,
	}
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
