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
	"strings"
	"time"
)

// Synthetic attributes every collection exposes to indexes.
const (
	syntheticID        = "$id"
	syntheticCreatedAt = "$createdAt"
	syntheticUpdatedAt = "$updatedAt"
)

// CreateIndex validates an index request against the collection's current
// attribute set and the backend limits, persists the metadata record with
// status pending and hands the physical build off to the apply worker. The
// hand-off is asynchronous: a successful return does not mean the index is
// queryable yet.
func (e *Engine) CreateIndex(ctx context.Context, collectionID string, req IndexRequest) (index *Index, err error) {
	start := time.Now()
	defer func() { e.observe("index", "create", start, err) }()

	if err = validateKey(req.Key); err != nil {
		return nil, err
	}

	switch req.Type {
	case IndexTypeKey, IndexTypeFulltext, IndexTypeUnique:
	default:
		return nil, fmt.Errorf("%w: unknown index type %q", ErrValueInvalid, req.Type)
	}

	if len(req.Attributes) == 0 {
		return nil, fmt.Errorf("%w: an index requires at least one attribute", ErrValueInvalid)
	}

	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	count, err := e.store.CountIndexes(ctx, coll.ID)
	if err != nil {
		return nil, err
	}

	if count >= e.store.MaxIndexes() {
		return nil, ErrIndexLimitExceeded
	}

	orders := make([]string, len(req.Attributes))
	copy(orders, req.Orders)
	for _, order := range orders {
		switch order {
		case "", OrderAsc, OrderDesc:
		default:
			return nil, fmt.Errorf("%w: unknown sort order %q", ErrValueInvalid, order)
		}
	}

	candidates := indexCandidates(coll)

	var keyLength int

	for i, attrKey := range req.Attributes {
		attr, ok := candidates[strings.ToLower(attrKey)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAttributeUnknown, attrKey)
		}

		if attr.Type == TypeRelationship {
			return nil, ErrAttributeTypeInvalid
		}

		if attr.Status != StatusAvailable {
			return nil, ErrAttributeNotAvailable
		}

		if attr.Array {
			// array positions are not independently orderable
			orders[i] = ""
		}

		if req.Type == IndexTypeFulltext && attr.Type != TypeString {
			return nil, fmt.Errorf("%w: fulltext indexes require string attributes, %q is %s", ErrIndexInvalid, attr.Key, attr.Type)
		}

		keyLength += indexKeyWeight(attr)
	}

	if max := e.store.MaxIndexKeyLength(); max > 0 && keyLength > max {
		return nil, fmt.Errorf("%w: combined key length %d exceeds the maximum of %d", ErrIndexInvalid, keyLength, max)
	}

	index = &Index{
		ID:         deriveID(coll.Sequence, req.Key),
		Key:        req.Key,
		Type:       req.Type,
		Attributes: append([]string(nil), req.Attributes...),
		Orders:     orders,
		Status:     StatusPending,
	}

	if err = e.store.CreateIndex(ctx, coll.ID, index); err != nil {
		return nil, mayTranslateIndexError(err)
	}

	e.invalidateCollection(ctx, coll.ID)

	if err = e.store.ApplyIndex(ctx, coll, index); err != nil {
		// the metadata record stays pending; the apply worker owns recovery
		e.logger.Errorf("schema: could not hand off index %s.%s for physical build: %v", coll.ID, index.Key, err)
		return nil, err
	}

	return index, nil
}

// indexCandidates maps lowercased attribute keys to the attributes an index
// may reference: the collection's declared attributes plus the synthetic,
// always-available document fields.
func indexCandidates(coll *Collection) map[string]*Attribute {
	candidates := make(map[string]*Attribute, len(coll.Attributes)+3)

	for _, attr := range coll.Attributes {
		candidates[strings.ToLower(attr.Key)] = attr
	}

	candidates[strings.ToLower(syntheticID)] = &Attribute{Key: syntheticID, Type: TypeString, Size: KeyLength, Status: StatusAvailable}
	candidates[strings.ToLower(syntheticCreatedAt)] = &Attribute{Key: syntheticCreatedAt, Type: TypeDatetime, Status: StatusAvailable}
	candidates[strings.ToLower(syntheticUpdatedAt)] = &Attribute{Key: syntheticUpdatedAt, Type: TypeDatetime, Status: StatusAvailable}

	return candidates
}

// indexKeyWeight estimates how many bytes an attribute contributes to the
// composite index key.
func indexKeyWeight(attr *Attribute) int {
	switch attr.Type {
	case TypeString:
		return attr.Size
	case TypeInteger:
		return attr.Size
	case TypeFloat, TypeDatetime:
		return 8
	case TypeBoolean:
		return 1
	}
	return 0
}

// GetIndex resolves an index by key within the collection projection.
func (e *Engine) GetIndex(ctx context.Context, collectionID, key string) (*Index, error) {
	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	for _, index := range coll.Indexes {
		if strings.EqualFold(index.Key, key) {
			return index, nil
		}
	}

	return nil, ErrIndexNotFound
}

// ListIndexes returns the indexes of a collection in declaration order.
func (e *Engine) ListIndexes(ctx context.Context, collectionID string, opts *ListOptions) (*IndexList, error) {
	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	return &IndexList{
		Indexes: window(coll.Indexes, opts),
		Total:   len(coll.Indexes),
	}, nil
}

// DeleteIndex transitions an available index to deleting and hands the
// physical drop off to the apply worker.
func (e *Engine) DeleteIndex(ctx context.Context, collectionID, key string) (err error) {
	start := time.Now()
	defer func() { e.observe("index", "delete", start, err) }()

	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return err
	}

	index, err := e.store.GetIndex(ctx, coll.ID, deriveID(coll.Sequence, key))
	if err != nil {
		return err
	}

	if index == nil {
		return ErrIndexNotFound
	}

	if index.Status == StatusAvailable {
		index.Status = StatusDeleting

		if err = e.store.UpdateIndex(ctx, coll.ID, index); err != nil {
			return err
		}
	}

	e.invalidateCollection(ctx, coll.ID)

	return e.store.DropIndex(ctx, coll, index)
}
