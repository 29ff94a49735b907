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

// IndexType is the kind of secondary index built over collection attributes.
type IndexType string

const (
	IndexTypeKey      IndexType = "key"
	IndexTypeFulltext IndexType = "fulltext"
	IndexTypeUnique   IndexType = "unique"
)

// Sort orders accepted per index position. An empty entry leaves the
// position unordered, which is forced for array-typed attributes.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Index is a secondary index over one or more attributes of a collection.
// Orders holds one entry per attribute position; entries may be empty.
type Index struct {
	ID         string
	Key        string
	Type       IndexType
	Attributes []string
	Orders     []string
	Status     Status
}

// Clone returns a deep copy of the index.
func (i *Index) Clone() *Index {
	if i == nil {
		return nil
	}

	clone := *i
	clone.Attributes = append([]string(nil), i.Attributes...)
	clone.Orders = append([]string(nil), i.Orders...)

	return &clone
}

// IndexRequest describes a new index to be created on a collection.
type IndexRequest struct {
	Key        string
	Type       IndexType
	Attributes []string
	Orders     []string
}

// IndexList is the result of listing the indexes of a collection.
type IndexList struct {
	Indexes []*Index
	Total   int
}
