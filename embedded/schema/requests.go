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

// AttributeKind tags the ten creatable attribute kinds. String-based kinds
// (email, enum, ip, url) compile down to string attributes carrying the
// corresponding format.
type AttributeKind string

const (
	KindString       AttributeKind = "string"
	KindEmail        AttributeKind = "email"
	KindEnum         AttributeKind = "enum"
	KindIP           AttributeKind = "ip"
	KindURL          AttributeKind = "url"
	KindInteger      AttributeKind = "integer"
	KindFloat        AttributeKind = "float"
	KindBoolean      AttributeKind = "boolean"
	KindDatetime     AttributeKind = "datetime"
	KindRelationship AttributeKind = "relationship"
)

// kindSignature returns the stored type and format an attribute of the given
// kind compiles to.
func kindSignature(kind AttributeKind) (AttributeType, Format, error) {
	switch kind {
	case KindString:
		return TypeString, FormatNone, nil
	case KindEmail:
		return TypeString, FormatEmail, nil
	case KindEnum:
		return TypeString, FormatEnum, nil
	case KindIP:
		return TypeString, FormatIP, nil
	case KindURL:
		return TypeString, FormatURL, nil
	case KindInteger:
		return TypeInteger, FormatNone, nil
	case KindFloat:
		return TypeFloat, FormatNone, nil
	case KindBoolean:
		return TypeBoolean, FormatNone, nil
	case KindDatetime:
		return TypeDatetime, FormatNone, nil
	case KindRelationship:
		return TypeRelationship, FormatNone, nil
	}
	return "", "", ErrIllegalArguments
}

// AttributeRequest is a type-specific attribute creation request.
type AttributeRequest interface {
	AttributeKind() AttributeKind
}

type StringAttributeRequest struct {
	Key      string
	Size     int
	Required bool
	Array    bool
	Default  *string
	Encrypt  bool
}

func (StringAttributeRequest) AttributeKind() AttributeKind { return KindString }

type EmailAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Default  *string
}

func (EmailAttributeRequest) AttributeKind() AttributeKind { return KindEmail }

type EnumAttributeRequest struct {
	Key      string
	Elements []string
	Required bool
	Array    bool
	Default  *string
}

func (EnumAttributeRequest) AttributeKind() AttributeKind { return KindEnum }

type IPAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Default  *string
}

func (IPAttributeRequest) AttributeKind() AttributeKind { return KindIP }

type URLAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Default  *string
}

func (URLAttributeRequest) AttributeKind() AttributeKind { return KindURL }

type IntegerAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Min      *int64
	Max      *int64
	Default  *int64
}

func (IntegerAttributeRequest) AttributeKind() AttributeKind { return KindInteger }

type FloatAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Min      *float64
	Max      *float64
	Default  *float64
}

func (FloatAttributeRequest) AttributeKind() AttributeKind { return KindFloat }

type BooleanAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Default  *bool
}

func (BooleanAttributeRequest) AttributeKind() AttributeKind { return KindBoolean }

type DatetimeAttributeRequest struct {
	Key      string
	Required bool
	Array    bool
	Default  *string
}

func (DatetimeAttributeRequest) AttributeKind() AttributeKind { return KindDatetime }

type RelationshipAttributeRequest struct {
	Key               string
	RelatedCollection string
	RelationType      RelationType
	TwoWay            bool
	TwoWayKey         string
	OnDelete          OnDelete
}

func (RelationshipAttributeRequest) AttributeKind() AttributeKind { return KindRelationship }

// UpdateAttributeRequest is a type-specific attribute update request. The
// request kind must match the stored attribute; a non-empty NewKey renames
// the attribute.
type UpdateAttributeRequest interface {
	AttributeKind() AttributeKind
	RenameTo() string
}

type StringAttributeUpdate struct {
	Size     int
	Required bool
	Default  *string
	NewKey   string
}

func (StringAttributeUpdate) AttributeKind() AttributeKind { return KindString }
func (r StringAttributeUpdate) RenameTo() string           { return r.NewKey }

type EmailAttributeUpdate struct {
	Required bool
	Default  *string
	NewKey   string
}

func (EmailAttributeUpdate) AttributeKind() AttributeKind { return KindEmail }
func (r EmailAttributeUpdate) RenameTo() string           { return r.NewKey }

type EnumAttributeUpdate struct {
	Elements []string
	Required bool
	Default  *string
	NewKey   string
}

func (EnumAttributeUpdate) AttributeKind() AttributeKind { return KindEnum }
func (r EnumAttributeUpdate) RenameTo() string           { return r.NewKey }

type IPAttributeUpdate struct {
	Required bool
	Default  *string
	NewKey   string
}

func (IPAttributeUpdate) AttributeKind() AttributeKind { return KindIP }
func (r IPAttributeUpdate) RenameTo() string           { return r.NewKey }

type URLAttributeUpdate struct {
	Required bool
	Default  *string
	NewKey   string
}

func (URLAttributeUpdate) AttributeKind() AttributeKind { return KindURL }
func (r URLAttributeUpdate) RenameTo() string           { return r.NewKey }

type IntegerAttributeUpdate struct {
	Required bool
	Min      *int64
	Max      *int64
	Default  *int64
	NewKey   string
}

func (IntegerAttributeUpdate) AttributeKind() AttributeKind { return KindInteger }
func (r IntegerAttributeUpdate) RenameTo() string           { return r.NewKey }

type FloatAttributeUpdate struct {
	Required bool
	Min      *float64
	Max      *float64
	Default  *float64
	NewKey   string
}

func (FloatAttributeUpdate) AttributeKind() AttributeKind { return KindFloat }
func (r FloatAttributeUpdate) RenameTo() string           { return r.NewKey }

type BooleanAttributeUpdate struct {
	Required bool
	Default  *bool
	NewKey   string
}

func (BooleanAttributeUpdate) AttributeKind() AttributeKind { return KindBoolean }
func (r BooleanAttributeUpdate) RenameTo() string           { return r.NewKey }

type DatetimeAttributeUpdate struct {
	Required bool
	Default  *string
	NewKey   string
}

func (DatetimeAttributeUpdate) AttributeKind() AttributeKind { return KindDatetime }
func (r DatetimeAttributeUpdate) RenameTo() string           { return r.NewKey }

type RelationshipAttributeUpdate struct {
	OnDelete OnDelete
	NewKey   string
}

func (RelationshipAttributeUpdate) AttributeKind() AttributeKind { return KindRelationship }
func (r RelationshipAttributeUpdate) RenameTo() string           { return r.NewKey }
