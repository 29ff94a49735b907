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

// Collection is a dynamically-defined table owned by a tenant. Attributes and
// indexes are appended by the lifecycle managers; the Sequence is assigned by
// the metadata store on creation and never changes afterwards.
type Collection struct {
	ID               string
	Sequence         int64
	Name             string
	Enabled          bool
	DocumentSecurity bool
	Permissions      []string
	Attributes       []*Attribute
	Indexes          []*Index
	SearchText       string
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Permissions) > 0 {
		clone.Permissions = append([]string(nil), c.Permissions...)
	}

	clone.Attributes = make([]*Attribute, len(c.Attributes))
	for i, attr := range c.Attributes {
		clone.Attributes[i] = attr.Clone()
	}

	clone.Indexes = make([]*Index, len(c.Indexes))
	for i, index := range c.Indexes {
		clone.Indexes[i] = index.Clone()
	}

	return &clone
}

// CollectionList is the result of listing collections.
type CollectionList struct {
	Collections []*Collection
	Total       int
}

// ListOptions windows a listing result. A zero limit returns all entries.
type ListOptions struct {
	Offset int
	Limit  int
}

func window[T any](entries []T, opts *ListOptions) []T {
	if opts == nil {
		return entries
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(entries) {
		offset = len(entries)
	}

	entries = entries[offset:]

	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}

	return entries
}
