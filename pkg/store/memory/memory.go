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

// Package memory provides an in-memory schema.Store. It plays both the
// metadata store and the apply worker: physical changes are applied
// synchronously, so records become available right after a successful
// apply. Intended for tests and lightweight embedding.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/nuvix-dev/nuvix/embedded/schema"
)

var _ schema.Store = (*Store)(nil)

// Store is a mutex-guarded schema.Store kept entirely in memory.
type Store struct {
	opts *Options

	mu          sync.RWMutex
	seq         int64
	collections map[string]*schema.Collection
	order       []string

	applyCollectionErr      error
	applyAttributeErr       error
	applyAttributeUpdateErr error
	applyIndexErr           error
	createAttributeErrs     []error

	invalidated []string
}

// Open returns an empty store with default limits.
func Open() *Store {
	return OpenWith(DefaultOptions())
}

func OpenWith(opts *Options) *Store {
	if opts == nil {
		opts = DefaultOptions()
	}

	return &Store{
		opts:        opts,
		collections: map[string]*schema.Collection{},
	}
}

// FailApplyCollection makes ApplyCollection return err until reset with nil.
func (s *Store) FailApplyCollection(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCollectionErr = err
}

// FailApplyAttribute makes ApplyAttribute return err until reset with nil.
func (s *Store) FailApplyAttribute(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyAttributeErr = err
}

// FailApplyAttributeUpdate makes ApplyAttributeUpdate return err until reset
// with nil.
func (s *Store) FailApplyAttributeUpdate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyAttributeUpdateErr = err
}

// FailApplyIndex makes ApplyIndex return err until reset with nil.
func (s *Store) FailApplyIndex(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyIndexErr = err
}

// QueueCreateAttributeError makes the next CreateAttribute call fail with
// err. Queued errors are consumed in order.
func (s *Store) QueueCreateAttributeError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createAttributeErrs = append(s.createAttributeErrs, err)
}

// Invalidations returns the cache invalidation keys recorded so far.
func (s *Store) Invalidations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.invalidated...)
}

func (s *Store) GetCollection(ctx context.Context, id string) (*schema.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[id]
	if !ok {
		return nil, nil
	}

	return coll.Clone(), nil
}

func (s *Store) CreateCollection(ctx context.Context, collection *schema.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection.ID]; ok {
		return schema.ErrDuplicateKey
	}

	s.seq++
	collection.Sequence = s.seq

	s.collections[collection.ID] = collection.Clone()
	s.order = append(s.order, collection.ID)

	return nil
}

func (s *Store) UpdateCollection(ctx context.Context, collection *schema.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection.ID]; !ok {
		return schema.ErrCollectionNotFound
	}

	s.collections[collection.ID] = collection.Clone()

	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, id)

	for i, entry := range s.order {
		if entry == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]*schema.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collections := make([]*schema.Collection, 0, len(s.order))
	for _, id := range s.order {
		collections = append(collections, s.collections[id].Clone())
	}

	return collections, nil
}

func (s *Store) GetAttribute(ctx context.Context, collectionID, attributeID string) (*schema.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return nil, nil
	}

	for _, attr := range coll.Attributes {
		if attr.ID == attributeID {
			return attr.Clone(), nil
		}
	}

	return nil, nil
}

func (s *Store) CreateAttribute(ctx context.Context, collectionID string, attribute *schema.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.createAttributeErrs) > 0 {
		err := s.createAttributeErrs[0]
		s.createAttributeErrs = s.createAttributeErrs[1:]
		return err
	}

	coll, ok := s.collections[collectionID]
	if !ok {
		return schema.ErrCollectionNotFound
	}

	if len(coll.Attributes) >= s.opts.maxAttributes {
		return schema.ErrCapacityExceeded
	}

	for _, existing := range coll.Attributes {
		if existing.ID == attribute.ID || strings.EqualFold(existing.Key, attribute.Key) {
			return schema.ErrDuplicateKey
		}
	}

	coll.Attributes = append(coll.Attributes, attribute.Clone())

	return nil
}

func (s *Store) UpdateAttribute(ctx context.Context, collectionID string, attribute *schema.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return schema.ErrCollectionNotFound
	}

	for i, existing := range coll.Attributes {
		if existing.ID == attribute.ID {
			coll.Attributes[i] = attribute.Clone()
			return nil
		}
	}

	return schema.ErrAttributeNotFound
}

func (s *Store) DeleteAttribute(ctx context.Context, collectionID, attributeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return nil
	}

	for i, existing := range coll.Attributes {
		if existing.ID == attributeID {
			coll.Attributes = append(coll.Attributes[:i], coll.Attributes[i+1:]...)
			return nil
		}
	}

	return nil
}

func (s *Store) GetIndex(ctx context.Context, collectionID, indexID string) (*schema.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return nil, nil
	}

	for _, index := range coll.Indexes {
		if index.ID == indexID {
			return index.Clone(), nil
		}
	}

	return nil, nil
}

func (s *Store) CreateIndex(ctx context.Context, collectionID string, index *schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return schema.ErrCollectionNotFound
	}

	if len(coll.Indexes) >= s.opts.maxIndexes {
		return schema.ErrCapacityExceeded
	}

	for _, existing := range coll.Indexes {
		if existing.ID == index.ID || strings.EqualFold(existing.Key, index.Key) {
			return schema.ErrDuplicateKey
		}
	}

	coll.Indexes = append(coll.Indexes, index.Clone())

	return nil
}

func (s *Store) UpdateIndex(ctx context.Context, collectionID string, index *schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return schema.ErrCollectionNotFound
	}

	for i, existing := range coll.Indexes {
		if existing.ID == index.ID {
			coll.Indexes[i] = index.Clone()
			return nil
		}
	}

	return schema.ErrIndexNotFound
}

func (s *Store) CountIndexes(ctx context.Context, collectionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return 0, nil
	}

	return len(coll.Indexes), nil
}

func (s *Store) ApplyCollection(ctx context.Context, collection *schema.Collection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.applyCollectionErr
}

func (s *Store) ApplyAttribute(ctx context.Context, collection *schema.Collection, attributes ...*schema.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applyAttributeErr != nil {
		return s.applyAttributeErr
	}

	// the in-process apply worker converges immediately
	for _, attribute := range attributes {
		s.setAttributeStatus(attribute.ID, schema.StatusAvailable)
	}

	return nil
}

func (s *Store) ApplyAttributeUpdate(ctx context.Context, collection *schema.Collection, attribute *schema.Attribute, newKey string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.applyAttributeUpdateErr
}

func (s *Store) ApplyIndex(ctx context.Context, collection *schema.Collection, index *schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applyIndexErr != nil {
		return s.applyIndexErr
	}

	coll, ok := s.collections[collection.ID]
	if !ok {
		return nil
	}

	for _, existing := range coll.Indexes {
		if existing.ID == index.ID {
			existing.Status = schema.StatusAvailable
		}
	}

	return nil
}

func (s *Store) DropAttribute(ctx context.Context, collection *schema.Collection, attribute *schema.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection.ID]
	if !ok {
		return nil
	}

	for i, existing := range coll.Attributes {
		if existing.ID == attribute.ID {
			coll.Attributes = append(coll.Attributes[:i], coll.Attributes[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) DropIndex(ctx context.Context, collection *schema.Collection, index *schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection.ID]
	if !ok {
		return nil
	}

	for i, existing := range coll.Indexes {
		if existing.ID == index.ID {
			coll.Indexes = append(coll.Indexes[:i], coll.Indexes[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) DropCollection(ctx context.Context, collection *schema.Collection) error {
	return nil
}

func (s *Store) InvalidateCollection(ctx context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated = append(s.invalidated, "collection:"+collectionID)

	return nil
}

func (s *Store) InvalidateAttribute(ctx context.Context, collectionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated = append(s.invalidated, "attribute:"+collectionID+":"+key)

	return nil
}

func (s *Store) MaxIndexes() int {
	return s.opts.maxIndexes
}

func (s *Store) MaxIndexKeyLength() int {
	return s.opts.maxIndexKeyLength
}

// callers must hold the write lock
func (s *Store) setAttributeStatus(attributeID string, status schema.Status) {
	for _, coll := range s.collections {
		for _, attr := range coll.Attributes {
			if attr.ID == attributeID {
				attr.Status = status
				return
			}
		}
	}
}
