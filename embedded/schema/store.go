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

import "context"

// Store is the storage engine collaborator the lifecycle managers run
// against. It persists metadata records, applies logical changes to the
// physical schema, and invalidates cached collection projections.
//
// Metadata persistence and physical apply fail independently; the engine
// compensates for partially-applied mutations but never retries. Get
// methods return a nil entity, and no error, when no record exists.
//
// Create methods raise ErrDuplicateKey when the derived identity or the
// key is already taken, and ErrCapacityExceeded when a backend limit on
// the number of records is reached.
type Store interface {
	GetCollection(ctx context.Context, id string) (*Collection, error)
	// CreateCollection assigns the collection sequence on success.
	CreateCollection(ctx context.Context, collection *Collection) error
	UpdateCollection(ctx context.Context, collection *Collection) error
	DeleteCollection(ctx context.Context, id string) error
	ListCollections(ctx context.Context) ([]*Collection, error)

	GetAttribute(ctx context.Context, collectionID, attributeID string) (*Attribute, error)
	CreateAttribute(ctx context.Context, collectionID string, attribute *Attribute) error
	UpdateAttribute(ctx context.Context, collectionID string, attribute *Attribute) error
	// DeleteAttribute removes the metadata record only. It is used by the
	// compensation and rename paths; user-facing deletion goes through
	// DropAttribute instead.
	DeleteAttribute(ctx context.Context, collectionID, attributeID string) error

	GetIndex(ctx context.Context, collectionID, indexID string) (*Index, error)
	CreateIndex(ctx context.Context, collectionID string, index *Index) error
	UpdateIndex(ctx context.Context, collectionID string, index *Index) error
	CountIndexes(ctx context.Context, collectionID string) (int, error)

	// ApplyCollection materializes the backing physical collection.
	ApplyCollection(ctx context.Context, collection *Collection) error
	// ApplyAttribute turns the given metadata records into physical schema.
	// Child-side relationship records carry no physical representation of
	// their own and are passed along for bookkeeping only.
	ApplyAttribute(ctx context.Context, collection *Collection, attributes ...*Attribute) error
	// ApplyAttributeUpdate forwards a size/type/required/default change, and
	// an optional rename, to the physical schema. Implementations raise
	// ErrTruncationNotAllowed when shrinking an attribute would cut data.
	ApplyAttributeUpdate(ctx context.Context, collection *Collection, attribute *Attribute, newKey string) error
	// ApplyIndex schedules the physical index build; it does not wait for it.
	ApplyIndex(ctx context.Context, collection *Collection, index *Index) error

	// DropAttribute removes the metadata record and schedules the physical drop.
	DropAttribute(ctx context.Context, collection *Collection, attribute *Attribute) error
	// DropIndex removes the metadata record and schedules the physical drop.
	DropIndex(ctx context.Context, collection *Collection, index *Index) error
	// DropCollection schedules the physical collection teardown.
	DropCollection(ctx context.Context, collection *Collection) error

	InvalidateCollection(ctx context.Context, collectionID string) error
	InvalidateAttribute(ctx context.Context, collectionID, key string) error

	// MaxIndexes is the backend limit on indexes per collection.
	MaxIndexes() int
	// MaxIndexKeyLength is the backend limit on the combined key length of
	// an index. A zero value disables the check.
	MaxIndexKeyLength() int
}
