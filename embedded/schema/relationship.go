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

// The relationship coordinator keeps the two metadata records of a two-way
// relationship mirrored: the parent side lives in the declaring collection,
// the child side in the related collection, with key and twoWayKey swapped.

// createTwinAttribute writes the child-side record of a two-way relationship
// into the related collection. The twin is created available right away: it
// has no physical representation of its own to wait for.
func (e *Engine) createTwinAttribute(ctx context.Context, coll, related *Collection, parent *Attribute) (*Attribute, error) {
	opts := parent.Options

	twin := &Attribute{
		ID:     deriveID(related.Sequence, opts.TwoWayKey),
		Key:    opts.TwoWayKey,
		Type:   TypeRelationship,
		Status: StatusAvailable,
		Options: &RelationshipOptions{
			RelatedCollection: coll.ID,
			RelationType:      opts.RelationType,
			TwoWay:            true,
			TwoWayKey:         parent.Key,
			OnDelete:          opts.OnDelete,
			Side:              SideChild,
		},
	}

	if err := e.store.CreateAttribute(ctx, related.ID, twin); err != nil {
		return nil, mayTranslateAttributeError(err)
	}

	e.invalidateCollection(ctx, related.ID)

	return twin, nil
}

// updateTwinAttribute propagates an option merge to the sibling record of a
// two-way relationship. When the updated side was renamed, the sibling's
// twoWayKey is repointed at the new key.
func (e *Engine) updateTwinAttribute(ctx context.Context, coll *Collection, attr *Attribute, newKey string) error {
	related, twin, err := e.resolveTwinAttribute(ctx, attr)
	if err != nil {
		return err
	}

	twin.Options.OnDelete = attr.Options.OnDelete
	if newKey != "" {
		twin.Options.TwoWayKey = newKey
	}

	if err := e.store.UpdateAttribute(ctx, related.ID, twin); err != nil {
		return mayTranslateAttributeError(err)
	}

	e.invalidateCollection(ctx, related.ID)

	return nil
}

// resolveTwinAttribute loads the related collection and the sibling record
// of a two-way relationship attribute.
func (e *Engine) resolveTwinAttribute(ctx context.Context, attr *Attribute) (*Collection, *Attribute, error) {
	related, err := e.collection(ctx, attr.Options.RelatedCollection)
	if err != nil {
		return nil, nil, err
	}

	twin, err := e.store.GetAttribute(ctx, related.ID, deriveID(related.Sequence, attr.Options.TwoWayKey))
	if err != nil {
		return nil, nil, err
	}

	if twin == nil {
		return nil, nil, ErrAttributeNotFound
	}

	return related, twin, nil
}
