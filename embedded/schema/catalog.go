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
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Permissions are strings of the form `action("role")`, e.g. `read("any")`.
var permissionPattern = regexp.MustCompile(`^(read|create|update|delete)\("[^"]+"\)$`)

func validatePermissions(permissions []string) error {
	for _, permission := range permissions {
		if !permissionPattern.MatchString(permission) {
			return fmt.Errorf("%w: malformed permission %q", ErrValueInvalid, permission)
		}
	}
	return nil
}

func searchText(id, name string) string {
	return strings.TrimSpace(id + " " + name)
}

// CollectionRequest describes a new collection.
type CollectionRequest struct {
	ID               string
	Name             string
	Permissions      []string
	DocumentSecurity bool
	Enabled          bool
}

// CollectionUpdate mutates collection-level fields; nil members are left
// untouched.
type CollectionUpdate struct {
	Name             *string
	Permissions      []string
	DocumentSecurity *bool
	Enabled          *bool
}

// CreateCollection persists the collection metadata and asks the store to
// materialize the backing physical collection. When materialization fails
// the metadata record is deleted again before the error is surfaced.
func (e *Engine) CreateCollection(ctx context.Context, req CollectionRequest) (coll *Collection, err error) {
	start := time.Now()
	defer func() { e.observe("collection", "create", start, err) }()

	if req.ID == "" || req.Name == "" {
		return nil, ErrIllegalArguments
	}

	if err = validateKey(req.ID); err != nil {
		return nil, err
	}

	if err = validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	coll = &Collection{
		ID:               req.ID,
		Name:             req.Name,
		Enabled:          req.Enabled,
		DocumentSecurity: req.DocumentSecurity,
		Permissions:      append([]string(nil), req.Permissions...),
		SearchText:       searchText(req.ID, req.Name),
	}

	if err = e.store.CreateCollection(ctx, coll); err != nil {
		return nil, mayTranslateCollectionError(err)
	}

	if err = e.store.ApplyCollection(ctx, coll); err != nil {
		if derr := e.store.DeleteCollection(ctx, coll.ID); derr != nil {
			e.logger.Errorf("schema: could not roll back collection %s after materialization failure: %v", coll.ID, derr)
		}
		return nil, err
	}

	return coll, nil
}

// GetCollection resolves a collection with its attribute and index projections.
func (e *Engine) GetCollection(ctx context.Context, id string) (*Collection, error) {
	return e.collection(ctx, id)
}

// ListCollections returns all collections in creation order.
func (e *Engine) ListCollections(ctx context.Context, opts *ListOptions) (*CollectionList, error) {
	collections, err := e.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	return &CollectionList{
		Collections: window(collections, opts),
		Total:       len(collections),
	}, nil
}

// UpdateCollection mutates collection-level flags, name and permissions and
// re-derives the search text.
func (e *Engine) UpdateCollection(ctx context.Context, id string, req CollectionUpdate) (coll *Collection, err error) {
	start := time.Now()
	defer func() { e.observe("collection", "update", start, err) }()

	coll, err = e.collection(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrIllegalArguments
		}
		coll.Name = *req.Name
	}

	if req.Permissions != nil {
		if err = validatePermissions(req.Permissions); err != nil {
			return nil, err
		}
		coll.Permissions = append([]string(nil), req.Permissions...)
	}

	if req.DocumentSecurity != nil {
		coll.DocumentSecurity = *req.DocumentSecurity
	}

	if req.Enabled != nil {
		coll.Enabled = *req.Enabled
	}

	coll.SearchText = searchText(coll.ID, coll.Name)

	if err = e.store.UpdateCollection(ctx, coll); err != nil {
		return nil, err
	}

	e.invalidateCollection(ctx, coll.ID)

	return coll, nil
}

// DeleteCollection removes the collection metadata and enqueues the physical
// teardown. The teardown converges asynchronously.
func (e *Engine) DeleteCollection(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { e.observe("collection", "delete", start, err) }()

	coll, err := e.collection(ctx, id)
	if err != nil {
		return err
	}

	if err = e.store.DeleteCollection(ctx, coll.ID); err != nil {
		return err
	}

	e.invalidateCollection(ctx, coll.ID)

	return e.store.DropCollection(ctx, coll)
}
