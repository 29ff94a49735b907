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

// Package schema implements the metadata lifecycle of dynamically-defined
// collections, attributes and indexes on top of a storage engine
// collaborator.
//
// The engine validates and persists metadata records, keeps two-way
// relationship attributes mirrored across collections, and compensates
// partially-applied mutations when the physical apply step fails. It holds
// no state of its own: durable state lives in the Store, and race safety
// between concurrent mutations relies on the Store's uniqueness guarantees.
package schema

import (
	"context"

	"github.com/nuvix-dev/nuvix/embedded/logger"
)

// Engine orchestrates schema mutations against a Store.
type Engine struct {
	store    Store
	logger   logger.Logger
	notifier Notifier
}

// NewEngine returns an engine running against the given store.
func NewEngine(store Store, opts *Options) (*Engine, error) {
	if store == nil {
		return nil, ErrIllegalArguments
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		store:    store,
		logger:   opts.logger,
		notifier: opts.notifier,
	}, nil
}

// collection resolves a collection or fails with ErrCollectionNotFound.
func (e *Engine) collection(ctx context.Context, id string) (*Collection, error) {
	if id == "" {
		return nil, ErrIllegalArguments
	}

	coll, err := e.store.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}

	if coll == nil {
		return nil, ErrCollectionNotFound
	}

	return coll, nil
}

// Cache invalidation is idempotent and best-effort: a failed purge leaves a
// stale projection behind, not inconsistent metadata.
func (e *Engine) invalidateCollection(ctx context.Context, collectionID string) {
	if err := e.store.InvalidateCollection(ctx, collectionID); err != nil {
		e.logger.Warningf("schema: could not invalidate cache of collection %s: %v", collectionID, err)
	}
}

func (e *Engine) invalidateAttribute(ctx context.Context, collectionID, key string) {
	if err := e.store.InvalidateAttribute(ctx, collectionID, key); err != nil {
		e.logger.Warningf("schema: could not invalidate cache of attribute %s.%s: %v", collectionID, key, err)
	}
}
