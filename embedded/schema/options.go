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

package schema

import (
	"fmt"
	"os"

	"github.com/nuvix-dev/nuvix/embedded/logger"
)

// Options configures an Engine.
type Options struct {
	logger   logger.Logger
	notifier Notifier
}

func DefaultOptions() *Options {
	return &Options{
		logger: logger.NewSimpleLogger("nuvix/schema", os.Stderr),
	}
}

func (opts *Options) WithLogger(l logger.Logger) *Options {
	opts.logger = l
	return opts
}

// WithNotifier registers an observer for change notifications. A nil
// notifier disables emission.
func (opts *Options) WithNotifier(notifier Notifier) *Options {
	opts.notifier = notifier
	return opts
}

func (opts *Options) Validate() error {
	if opts == nil {
		return fmt.Errorf("%w: nil options", ErrIllegalArguments)
	}

	if opts.logger == nil {
		return fmt.Errorf("%w: nil logger", ErrIllegalArguments)
	}

	return nil
}
