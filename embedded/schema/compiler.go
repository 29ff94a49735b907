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
	"fmt"
	"math"
	"strings"
	"time"

	validation "github.com/go-playground/validator/v10"
)

// maxStringSize caps the declared size of plain string attributes.
const maxStringSize = 10 * 1024 * 1024

var formatValidator = validation.New()

// compileAttribute turns a type-specific creation request into a canonical
// attribute record with an unset status. Validation failures surface as
// ErrValueInvalid, ErrDefaultUnsupported or ErrIllegalArguments; no state
// is touched before compilation succeeds.
func compileAttribute(req AttributeRequest) (*Attribute, error) {
	switch r := req.(type) {
	case StringAttributeRequest:
		return compileString(r)
	case EmailAttributeRequest:
		return compileFormatted(r.Key, FormatEmail, emailLength, r.Required, r.Array, r.Default)
	case EnumAttributeRequest:
		return compileEnum(r)
	case IPAttributeRequest:
		return compileFormatted(r.Key, FormatIP, ipLength, r.Required, r.Array, r.Default)
	case URLAttributeRequest:
		return compileFormatted(r.Key, FormatURL, urlLength, r.Required, r.Array, r.Default)
	case IntegerAttributeRequest:
		return compileInteger(r)
	case FloatAttributeRequest:
		return compileFloat(r)
	case BooleanAttributeRequest:
		return compileBoolean(r)
	case DatetimeAttributeRequest:
		return compileDatetime(r)
	case RelationshipAttributeRequest:
		return compileRelationship(r)
	}

	return nil, fmt.Errorf("%w: unknown attribute kind %q", ErrIllegalArguments, req.AttributeKind())
}

func validateKey(key string) error {
	if key == "" || len(key) > KeyLength {
		return fmt.Errorf("%w: key must be between 1 and %d characters", ErrValueInvalid, KeyLength)
	}

	if strings.HasPrefix(key, "$") {
		return fmt.Errorf("%w: keys starting with $ are reserved", ErrValueInvalid)
	}

	return nil
}

// validateDefaultAllowed enforces that required and array attributes never
// carry a default value.
func validateDefaultAllowed(required, array, hasDefault bool) error {
	if !hasDefault {
		return nil
	}

	if required {
		return fmt.Errorf("%w: required attributes cannot have a default value", ErrDefaultUnsupported)
	}

	if array {
		return fmt.Errorf("%w: array attributes cannot have a default value", ErrDefaultUnsupported)
	}

	return nil
}

func compileString(r StringAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	if r.Size <= 0 || r.Size > maxStringSize {
		return nil, fmt.Errorf("%w: size must be between 1 and %d", ErrValueInvalid, maxStringSize)
	}

	var def any
	if r.Default != nil {
		if err := validateStringDefault(*r.Default, r.Size); err != nil {
			return nil, err
		}
		def = *r.Default
	}

	attr := &Attribute{
		Key:      r.Key,
		Type:     TypeString,
		Size:     r.Size,
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
	}

	if r.Encrypt {
		attr.Filters = append(attr.Filters, FilterEncrypt)
	}

	return attr, nil
}

func validateStringDefault(def string, size int) error {
	if len(def) > size {
		return fmt.Errorf("%w: default value is longer than the attribute size %d", ErrValueInvalid, size)
	}
	return nil
}

// compileFormatted covers email, ip and url attributes: fixed size, string
// base type, format-specific default validation.
func compileFormatted(key string, format Format, size int, required, array bool, def *string) (*Attribute, error) {
	if err := validateDefaultAllowed(required, array, def != nil); err != nil {
		return nil, err
	}

	var value any
	if def != nil {
		if err := validateFormattedDefault(*def, format); err != nil {
			return nil, err
		}
		value = *def
	}

	return &Attribute{
		Key:      key,
		Type:     TypeString,
		Size:     size,
		Required: required,
		Array:    array,
		Default:  value,
		Format:   format,
	}, nil
}

func validateFormattedDefault(def string, format Format) error {
	var tag string
	switch format {
	case FormatEmail:
		tag = "email"
	case FormatIP:
		tag = "ip"
	case FormatURL:
		tag = "url"
	default:
		return fmt.Errorf("%w: %q", ErrFormatUnsupported, format)
	}

	if err := formatValidator.Var(def, tag); err != nil {
		return fmt.Errorf("%w: default value is not a valid %s", ErrValueInvalid, format)
	}

	return nil
}

func compileEnum(r EnumAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	if err := validateEnumElements(r.Elements, r.Default); err != nil {
		return nil, err
	}

	var def any
	if r.Default != nil {
		def = *r.Default
	}

	return &Attribute{
		Key:      r.Key,
		Type:     TypeString,
		Size:     KeyLength,
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
		Format:   FormatEnum,
		FormatOptions: FormatOptions{
			Elements: append([]string(nil), r.Elements...),
		},
	}, nil
}

func validateEnumElements(elements []string, def *string) error {
	if len(elements) == 0 {
		return fmt.Errorf("%w: enum attributes require at least one element", ErrValueInvalid)
	}

	for _, element := range elements {
		if element == "" || len(element) > KeyLength {
			return fmt.Errorf("%w: enum elements must be between 1 and %d characters", ErrValueInvalid, KeyLength)
		}
	}

	if def != nil && !containsString(elements, *def) {
		return fmt.Errorf("%w: default value not found in elements", ErrValueInvalid)
	}

	return nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func compileInteger(r IntegerAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	rng, err := resolveIntRange(r.Min, r.Max)
	if err != nil {
		return nil, err
	}

	var def any
	if r.Default != nil {
		if err := validateIntDefault(*r.Default, rng); err != nil {
			return nil, err
		}
		def = *r.Default
	}

	return &Attribute{
		Key:      r.Key,
		Type:     TypeInteger,
		Size:     intSize(rng),
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
		FormatOptions: FormatOptions{
			IntRange: rng,
		},
	}, nil
}

func resolveIntRange(min, max *int64) (*IntRange, error) {
	rng := &IntRange{Min: math.MinInt64, Max: math.MaxInt64}
	if min != nil {
		rng.Min = *min
	}
	if max != nil {
		rng.Max = *max
	}

	if rng.Min > rng.Max {
		return nil, fmt.Errorf("%w: minimum value %d exceeds maximum value %d", ErrValueInvalid, rng.Min, rng.Max)
	}

	return rng, nil
}

func validateIntDefault(def int64, rng *IntRange) error {
	if def < rng.Min || def > rng.Max {
		return fmt.Errorf("%w: default value %d is outside the range [%d, %d]", ErrValueInvalid, def, rng.Min, rng.Max)
	}
	return nil
}

// intSize widens the column from 4 to 8 bytes when the declared maximum
// leaves the signed 32-bit range.
func intSize(rng *IntRange) int {
	if rng.Max > math.MaxInt32 {
		return 8
	}
	return 4
}

func compileFloat(r FloatAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	rng, err := resolveFloatRange(r.Min, r.Max)
	if err != nil {
		return nil, err
	}

	var def any
	if r.Default != nil {
		if err := validateFloatDefault(*r.Default, rng); err != nil {
			return nil, err
		}
		def = *r.Default
	}

	return &Attribute{
		Key:      r.Key,
		Type:     TypeFloat,
		Size:     8,
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
		FormatOptions: FormatOptions{
			FloatRange: rng,
		},
	}, nil
}

func resolveFloatRange(min, max *float64) (*FloatRange, error) {
	rng := &FloatRange{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	if min != nil {
		rng.Min = *min
	}
	if max != nil {
		rng.Max = *max
	}

	if rng.Min > rng.Max {
		return nil, fmt.Errorf("%w: minimum value %g exceeds maximum value %g", ErrValueInvalid, rng.Min, rng.Max)
	}

	return rng, nil
}

func validateFloatDefault(def float64, rng *FloatRange) error {
	if def < rng.Min || def > rng.Max {
		return fmt.Errorf("%w: default value %g is outside the range [%g, %g]", ErrValueInvalid, def, rng.Min, rng.Max)
	}
	return nil
}

func compileBoolean(r BooleanAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	var def any
	if r.Default != nil {
		def = *r.Default
	}

	return &Attribute{
		Key:      r.Key,
		Type:     TypeBoolean,
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
	}, nil
}

func compileDatetime(r DatetimeAttributeRequest) (*Attribute, error) {
	if err := validateDefaultAllowed(r.Required, r.Array, r.Default != nil); err != nil {
		return nil, err
	}

	var def any
	if r.Default != nil {
		if err := validateDatetimeDefault(*r.Default); err != nil {
			return nil, err
		}
		def = *r.Default
	}

	return &Attribute{
		Key:      r.Key,
		Type:     TypeDatetime,
		Required: r.Required,
		Array:    r.Array,
		Default:  def,
	}, nil
}

func validateDatetimeDefault(def string) error {
	if _, err := time.Parse(time.RFC3339, def); err != nil {
		return fmt.Errorf("%w: default value is not a valid RFC 3339 datetime", ErrValueInvalid)
	}
	return nil
}

// compileRelationship builds the parent-side record of a relationship.
// Relationship attributes never carry defaults, filters or the required and
// array flags; the child side is assigned by the relationship coordinator.
func compileRelationship(r RelationshipAttributeRequest) (*Attribute, error) {
	switch r.RelationType {
	case RelationOneToOne, RelationOneToMany, RelationManyToOne, RelationManyToMany:
	default:
		return nil, fmt.Errorf("%w: unknown relation type %q", ErrValueInvalid, r.RelationType)
	}

	onDelete := r.OnDelete
	if onDelete == "" {
		onDelete = OnDeleteRestrict
	}
	switch onDelete {
	case OnDeleteRestrict, OnDeleteCascade, OnDeleteSetNull:
	default:
		return nil, fmt.Errorf("%w: unknown on-delete behavior %q", ErrValueInvalid, r.OnDelete)
	}

	if r.RelatedCollection == "" {
		return nil, fmt.Errorf("%w: related collection is required", ErrIllegalArguments)
	}

	if r.TwoWay {
		if err := validateKey(r.TwoWayKey); err != nil {
			return nil, err
		}
	}

	return &Attribute{
		Key:  r.Key,
		Type: TypeRelationship,
		Options: &RelationshipOptions{
			RelatedCollection: r.RelatedCollection,
			RelationType:      r.RelationType,
			TwoWay:            r.TwoWay,
			TwoWayKey:         r.TwoWayKey,
			OnDelete:          onDelete,
			Side:              SideParent,
		},
	}, nil
}
