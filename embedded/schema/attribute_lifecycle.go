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
	"strings"
	"time"
)

// CreateAttribute validates, persists and physically applies a new attribute.
//
// The metadata record is written with status pending; the record flips to
// available once the apply worker confirms the physical change. When any
// later step fails, the records written so far are deleted again so the
// catalog looks as if the request never happened. The compensating deletes
// themselves are not retried; a failed rollback is logged and leaves an
// orphaned record behind.
func (e *Engine) CreateAttribute(ctx context.Context, collectionID string, req AttributeRequest) (attr *Attribute, err error) {
	start := time.Now()
	defer func() { e.observe("attribute", "create", start, err) }()

	if req == nil {
		return nil, ErrIllegalArguments
	}

	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	attr, err = compileAttribute(req)
	if err != nil {
		return nil, err
	}

	if err = validateKey(attr.Key); err != nil {
		return nil, err
	}

	// duplicate detection is case-insensitive: record identity derives from
	// the lowercased key
	for _, existing := range coll.Attributes {
		if strings.EqualFold(existing.Key, attr.Key) {
			return nil, ErrAttributeAlreadyExists
		}
	}

	var related *Collection

	if attr.Type == TypeRelationship {
		related, err = e.collection(ctx, attr.Options.RelatedCollection)
		if err != nil {
			return nil, err
		}

		if attr.Options.TwoWay {
			for _, existing := range related.Attributes {
				if strings.EqualFold(existing.Key, attr.Options.TwoWayKey) {
					return nil, ErrAttributeAlreadyExists
				}
			}
		}
	}

	attr.ID = deriveID(coll.Sequence, attr.Key)
	attr.Status = StatusPending

	if err = e.store.CreateAttribute(ctx, coll.ID, attr); err != nil {
		return nil, mayTranslateAttributeError(err)
	}

	e.invalidateCollection(ctx, coll.ID)

	var twin *Attribute

	if attr.Type == TypeRelationship && attr.Options.TwoWay {
		twin, err = e.createTwinAttribute(ctx, coll, related, attr)
		if err != nil {
			if derr := e.store.DeleteAttribute(ctx, coll.ID, attr.ID); derr != nil {
				e.logger.Errorf("schema: could not roll back attribute %s.%s after twin creation failure: %v", coll.ID, attr.Key, derr)
			}
			e.invalidateCollection(ctx, coll.ID)
			return nil, err
		}
	}

	applied := []*Attribute{attr}
	if twin != nil {
		applied = append(applied, twin)
	}

	if err = e.store.ApplyAttribute(ctx, coll, applied...); err != nil {
		if derr := e.store.DeleteAttribute(ctx, coll.ID, attr.ID); derr != nil {
			e.logger.Errorf("schema: could not roll back attribute %s.%s after apply failure: %v", coll.ID, attr.Key, derr)
		}
		if twin != nil {
			if derr := e.store.DeleteAttribute(ctx, related.ID, twin.ID); derr != nil {
				e.logger.Errorf("schema: could not roll back attribute %s.%s after apply failure: %v", related.ID, twin.Key, derr)
			}
			e.invalidateCollection(ctx, related.ID)
		}
		e.invalidateCollection(ctx, coll.ID)
		return nil, err
	}

	return attr, nil
}

// UpdateAttribute mutates an existing, available attribute. The request kind
// must match the stored type and format. A non-empty NewKey renames the
// attribute: the old metadata record is deleted and a new one is created
// under the new derived identity; if that creation fails the original record
// is restored best-effort. The restore is not atomic — see the package
// documentation for the residual risk.
func (e *Engine) UpdateAttribute(ctx context.Context, collectionID, key string, req UpdateAttributeRequest) (updated *Attribute, err error) {
	start := time.Now()
	defer func() { e.observe("attribute", "update", start, err) }()

	if req == nil || key == "" {
		return nil, ErrIllegalArguments
	}

	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	attr, err := e.store.GetAttribute(ctx, coll.ID, deriveID(coll.Sequence, key))
	if err != nil {
		return nil, err
	}

	if attr == nil {
		return nil, ErrAttributeNotFound
	}

	if attr.Status != StatusAvailable {
		return nil, ErrAttributeNotAvailable
	}

	expectedType, expectedFormat, err := kindSignature(req.AttributeKind())
	if err != nil {
		return nil, err
	}

	if attr.Type != expectedType || attr.Format != expectedFormat {
		return nil, ErrAttributeTypeInvalid
	}

	updated, err = applyAttributeUpdate(attr, req)
	if err != nil {
		return nil, err
	}

	newKey := req.RenameTo()
	if newKey == attr.Key {
		newKey = ""
	}
	if newKey != "" {
		if err = validateKey(newKey); err != nil {
			return nil, err
		}
	}

	if err = e.store.ApplyAttributeUpdate(ctx, coll, updated, newKey); err != nil {
		return nil, mayTranslateAttributeError(err)
	}

	if attr.Type == TypeRelationship && updated.Options != nil && updated.Options.TwoWay {
		if err = e.updateTwinAttribute(ctx, coll, updated, newKey); err != nil {
			return nil, err
		}
	}

	if newKey != "" {
		updated, err = e.renameAttribute(ctx, coll, attr, updated, newKey)
		if err != nil {
			return nil, err
		}
	} else {
		if err = e.store.UpdateAttribute(ctx, coll.ID, updated); err != nil {
			return nil, mayTranslateAttributeError(err)
		}
	}

	e.invalidateCollection(ctx, coll.ID)
	e.invalidateAttribute(ctx, coll.ID, updated.Key)

	e.notifySchemaChanged(ctx, coll.ID, updated.Key, "update")

	return updated, nil
}

// renameAttribute moves the metadata record to its new derived identity as a
// delete-then-create sequence. There is no mutual exclusion against other
// writers: if the create fails the original record is re-created best-effort,
// and if that restore fails too the attribute metadata is lost.
func (e *Engine) renameAttribute(ctx context.Context, coll *Collection, original, updated *Attribute, newKey string) (*Attribute, error) {
	if err := e.store.DeleteAttribute(ctx, coll.ID, original.ID); err != nil {
		return nil, err
	}

	renamed := updated.Clone()
	renamed.Key = newKey
	renamed.ID = deriveID(coll.Sequence, newKey)

	if err := e.store.CreateAttribute(ctx, coll.ID, renamed); err != nil {
		if rerr := e.store.CreateAttribute(ctx, coll.ID, original); rerr != nil {
			e.logger.Errorf("schema: could not restore attribute %s.%s after failed rename: %v", coll.ID, original.Key, rerr)
		}
		return nil, mayTranslateAttributeError(err)
	}

	return renamed, nil
}

// applyAttributeUpdate merges a type-specific update request into a copy of
// the stored attribute, re-running the compile-time validation rules.
func applyAttributeUpdate(attr *Attribute, req UpdateAttributeRequest) (*Attribute, error) {
	updated := attr.Clone()

	switch r := req.(type) {
	case StringAttributeUpdate:
		if r.Size <= 0 || r.Size > maxStringSize {
			return nil, ErrValueInvalid
		}
		updated.Size = r.Size
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			if err := validateStringDefault(*r.Default, r.Size); err != nil {
				return nil, err
			}
			updated.Default = *r.Default
		}

	case EmailAttributeUpdate:
		if err := setFormattedUpdate(updated, r.Required, r.Default); err != nil {
			return nil, err
		}

	case IPAttributeUpdate:
		if err := setFormattedUpdate(updated, r.Required, r.Default); err != nil {
			return nil, err
		}

	case URLAttributeUpdate:
		if err := setFormattedUpdate(updated, r.Required, r.Default); err != nil {
			return nil, err
		}

	case EnumAttributeUpdate:
		if err := validateEnumElements(r.Elements, r.Default); err != nil {
			return nil, err
		}
		updated.FormatOptions.Elements = append([]string(nil), r.Elements...)
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			updated.Default = *r.Default
		}

	case IntegerAttributeUpdate:
		rng, err := resolveIntRange(r.Min, r.Max)
		if err != nil {
			return nil, err
		}
		updated.FormatOptions.IntRange = rng
		updated.Size = intSize(rng)
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			if err := validateIntDefault(*r.Default, rng); err != nil {
				return nil, err
			}
			updated.Default = *r.Default
		}

	case FloatAttributeUpdate:
		rng, err := resolveFloatRange(r.Min, r.Max)
		if err != nil {
			return nil, err
		}
		updated.FormatOptions.FloatRange = rng
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			if err := validateFloatDefault(*r.Default, rng); err != nil {
				return nil, err
			}
			updated.Default = *r.Default
		}

	case BooleanAttributeUpdate:
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			updated.Default = *r.Default
		}

	case DatetimeAttributeUpdate:
		updated.Required = r.Required
		updated.Default = nil
		if r.Default != nil {
			if err := validateDatetimeDefault(*r.Default); err != nil {
				return nil, err
			}
			updated.Default = *r.Default
		}

	case RelationshipAttributeUpdate:
		if r.OnDelete != "" {
			switch r.OnDelete {
			case OnDeleteRestrict, OnDeleteCascade, OnDeleteSetNull:
			default:
				return nil, ErrValueInvalid
			}
			updated.Options.OnDelete = r.OnDelete
		}

	default:
		return nil, ErrIllegalArguments
	}

	if err := validateDefaultAllowed(updated.Required, updated.Array, updated.Default != nil); err != nil {
		return nil, err
	}

	return updated, nil
}

func setFormattedUpdate(updated *Attribute, required bool, def *string) error {
	updated.Required = required
	updated.Default = nil
	if def != nil {
		if err := validateFormattedDefault(*def, updated.Format); err != nil {
			return err
		}
		updated.Default = *def
	}
	return nil
}

// DeleteAttribute removes an attribute. Metadata deletion and the physical
// drop are delegated to the store in a single call; the record status is
// intentionally left untouched on the way out, unlike index deletion which
// transitions to deleting first.
func (e *Engine) DeleteAttribute(ctx context.Context, collectionID, key string) (err error) {
	start := time.Now()
	defer func() { e.observe("attribute", "delete", start, err) }()

	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return err
	}

	attr, err := e.store.GetAttribute(ctx, coll.ID, deriveID(coll.Sequence, key))
	if err != nil {
		return err
	}

	if attr == nil {
		return ErrAttributeNotFound
	}

	e.invalidateCollection(ctx, coll.ID)
	e.invalidateAttribute(ctx, coll.ID, attr.Key)

	if attr.Type == TypeRelationship && attr.Options.TwoWay {
		related, twin, terr := e.resolveTwinAttribute(ctx, attr)
		if terr != nil {
			return terr
		}

		e.invalidateCollection(ctx, related.ID)
		e.invalidateAttribute(ctx, related.ID, twin.Key)

		if err = e.store.DropAttribute(ctx, coll, attr); err != nil {
			return err
		}

		return e.store.DropAttribute(ctx, related, twin)
	}

	return e.store.DropAttribute(ctx, coll, attr)
}

// GetAttribute resolves a single attribute by key.
func (e *Engine) GetAttribute(ctx context.Context, collectionID, key string) (*Attribute, error) {
	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	attr, err := e.store.GetAttribute(ctx, coll.ID, deriveID(coll.Sequence, key))
	if err != nil {
		return nil, err
	}

	if attr == nil {
		return nil, ErrAttributeNotFound
	}

	return attr, nil
}

// ListAttributes returns the attributes of a collection in declaration order.
func (e *Engine) ListAttributes(ctx context.Context, collectionID string, opts *ListOptions) (*AttributeList, error) {
	coll, err := e.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	return &AttributeList{
		Attributes: window(coll.Attributes, opts),
		Total:      len(coll.Attributes),
	}, nil
}
