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

// Package cache invalidates cached collection projections. The platform
// caches collection metadata and physical-schema projections aggressively;
// the lifecycle engine only ever needs to purge, never to read or write.
package cache

import "context"

// Cache purges entries by key. Deleting a missing key is not an error.
type Cache interface {
	Delete(ctx context.Context, keys ...string) error
}

// Noop satisfies Cache without doing anything.
type Noop struct{}

func (Noop) Delete(ctx context.Context, keys ...string) error {
	return nil
}
