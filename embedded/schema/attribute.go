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

// KeyLength is the maximum length of a collection, attribute or index key.
const KeyLength = 255

const (
	emailLength = 254  // RFC 5321 limit
	ipLength    = 39   // textual IPv6
	urlLength   = 2000 // practical browser limit
)

// AttributeType is the base storage type of an attribute.
type AttributeType string

const (
	TypeString       AttributeType = "string"
	TypeInteger      AttributeType = "integer"
	TypeFloat        AttributeType = "float"
	TypeBoolean      AttributeType = "boolean"
	TypeDatetime     AttributeType = "datetime"
	TypeRelationship AttributeType = "relationship"
)

// Format refines a string attribute with content-level validation rules.
type Format string

const (
	FormatNone  Format = ""
	FormatEmail Format = "email"
	FormatIP    Format = "ip"
	FormatURL   Format = "url"
	FormatEnum  Format = "enum"
)

// Status tracks the convergence of a metadata record with the physical schema.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAvailable Status = "available"
	StatusDeleting  Status = "deleting"
	StatusStuck     Status = "stuck"
	StatusFailed    Status = "failed"
)

// RelationType describes the cardinality of a relationship attribute.
type RelationType string

const (
	RelationOneToOne   RelationType = "oneToOne"
	RelationOneToMany  RelationType = "oneToMany"
	RelationManyToOne  RelationType = "manyToOne"
	RelationManyToMany RelationType = "manyToMany"
)

// OnDelete describes what happens to related documents when the parent document is deleted.
type OnDelete string

const (
	OnDeleteRestrict OnDelete = "restrict"
	OnDeleteCascade  OnDelete = "cascade"
	OnDeleteSetNull  OnDelete = "setNull"
)

// Side distinguishes the declaring record of a relationship from its mirrored twin.
type Side string

const (
	SideParent Side = "parent"
	SideChild  Side = "child"
)

// FilterEncrypt marks an attribute whose values are encrypted at rest.
const FilterEncrypt = "encrypt"

// RelationshipOptions is only set on attributes of type relationship.
type RelationshipOptions struct {
	RelatedCollection string
	RelationType      RelationType
	TwoWay            bool
	TwoWayKey         string
	OnDelete          OnDelete
	Side              Side
}

// IntRange bounds the accepted values of an integer attribute.
type IntRange struct {
	Min int64
	Max int64
}

// FloatRange bounds the accepted values of a float attribute.
type FloatRange struct {
	Min float64
	Max float64
}

// FormatOptions carries type-specific validation parameters:
// a numeric range for integer and float attributes, the accepted
// elements for enum-formatted string attributes.
type FormatOptions struct {
	IntRange   *IntRange
	FloatRange *FloatRange
	Elements   []string
}

// Attribute is a typed column-like field definition attached to a collection.
// Its ID derives deterministically from the owning collection sequence and the
// lowercased key, so records are addressable without a separate lookup index.
type Attribute struct {
	ID            string
	Key           string
	Type          AttributeType
	Status        Status
	Size          int
	Required      bool
	Array         bool
	Default       any
	Format        Format
	FormatOptions FormatOptions
	Filters       []string
	Options       *RelationshipOptions
}

// Clone returns a deep copy of the attribute.
func (a *Attribute) Clone() *Attribute {
	if a == nil {
		return nil
	}

	clone := *a

	if len(a.Filters) > 0 {
		clone.Filters = append([]string(nil), a.Filters...)
	}

	if a.Options != nil {
		opts := *a.Options
		clone.Options = &opts
	}

	if a.FormatOptions.IntRange != nil {
		r := *a.FormatOptions.IntRange
		clone.FormatOptions.IntRange = &r
	}

	if a.FormatOptions.FloatRange != nil {
		r := *a.FormatOptions.FloatRange
		clone.FormatOptions.FloatRange = &r
	}

	if len(a.FormatOptions.Elements) > 0 {
		clone.FormatOptions.Elements = append([]string(nil), a.FormatOptions.Elements...)
	}

	return &clone
}

// AttributeList is the result of listing the attributes of a collection.
type AttributeList struct {
	Attributes []*Attribute
	Total      int
}
