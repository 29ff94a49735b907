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

package schema_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuvix-dev/nuvix/embedded/logger"
	"github.com/nuvix-dev/nuvix/embedded/schema"
	"github.com/nuvix-dev/nuvix/pkg/store/memory"
)

func TestCreateAttribute(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	attr, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 255})
	require.NoError(t, err)
	require.NotEmpty(t, attr.ID)
	// the response reflects the state at persistence time
	require.Equal(t, schema.StatusPending, attr.Status)

	// the in-process apply worker has already converged the stored record
	stored, err := engine.GetAttribute(ctx, "articles", "title")
	require.NoError(t, err)
	require.Equal(t, attr.ID, stored.ID)
	require.Equal(t, schema.StatusAvailable, stored.Status)

	_, err = engine.CreateAttribute(ctx, "articles", nil)
	require.ErrorIs(t, err, schema.ErrIllegalArguments)

	_, err = engine.CreateAttribute(ctx, "missing", schema.StringAttributeRequest{Key: "title", Size: 10})
	require.ErrorIs(t, err, schema.ErrCollectionNotFound)

	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "$title", Size: 10})
	require.ErrorIs(t, err, schema.ErrValueInvalid)

	// duplicate detection ignores case: both keys derive the same identity
	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "TITLE", Size: 10})
	require.ErrorIs(t, err, schema.ErrAttributeAlreadyExists)
}

func TestCreateAttributeCapacity(t *testing.T) {
	engine, _ := makeEngineWith(t, memory.DefaultOptions().WithMaxAttributes(1))
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 10})
	require.NoError(t, err)

	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "body", Size: 10})
	require.ErrorIs(t, err, schema.ErrAttributeLimitExceeded)
}

func TestCreateTwoWayRelationship(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	articles := makeCollection(t, engine, "articles")
	users := makeCollection(t, engine, "users")

	_, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "missing",
		RelationType:      schema.RelationManyToOne,
	})
	require.ErrorIs(t, err, schema.ErrCollectionNotFound)

	parent, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "articles",
		OnDelete:          schema.OnDeleteSetNull,
	})
	require.NoError(t, err)
	require.Equal(t, derivedID(articles.Sequence, "author"), parent.ID)

	twin, err := engine.GetAttribute(ctx, "users", "articles")
	require.NoError(t, err)
	require.Equal(t, derivedID(users.Sequence, "articles"), twin.ID)
	require.Equal(t, "articles", twin.Key)
	require.Equal(t, schema.SideChild, twin.Options.Side)
	require.Equal(t, "articles", twin.Options.RelatedCollection)
	require.Equal(t, "author", twin.Options.TwoWayKey)
	require.Equal(t, schema.OnDeleteSetNull, twin.Options.OnDelete)
	require.Equal(t, schema.StatusAvailable, twin.Status)

	// a second relationship whose twin key collides in the related collection
	_, err = engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "editor",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "Articles",
	})
	require.ErrorIs(t, err, schema.ErrAttributeAlreadyExists)
}

func TestCreateAttributeRollsBackOnApplyFailure(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	store.FailApplyAttribute(errors.New("column limit reached"))

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 10})
	require.EqualError(t, err, "column limit reached")

	_, err = engine.GetAttribute(ctx, "articles", "title")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	store.FailApplyAttribute(nil)

	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 10})
	require.NoError(t, err)
}

func TestCreateTwoWayRollsBackBothOnApplyFailure(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")
	makeCollection(t, engine, "users")

	store.FailApplyAttribute(errors.New("column limit reached"))

	_, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "articles",
	})
	require.EqualError(t, err, "column limit reached")

	// both sides were compensated away
	_, err = engine.GetAttribute(ctx, "articles", "author")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	_, err = engine.GetAttribute(ctx, "users", "articles")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestCreateTwinFailureRollsBackParent(t *testing.T) {
	engine, _ := makeEngineWith(t, memory.DefaultOptions().WithMaxAttributes(1))
	ctx := context.Background()

	makeCollection(t, engine, "articles")
	makeCollection(t, engine, "users")

	_, err := engine.CreateAttribute(ctx, "users", schema.StringAttributeRequest{Key: "name", Size: 10})
	require.NoError(t, err)

	// the twin cannot be written into the full related collection
	_, err = engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "articles",
	})
	require.ErrorIs(t, err, schema.ErrAttributeLimitExceeded)

	_, err = engine.GetAttribute(ctx, "articles", "author")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestUpdateAttribute(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{
		Key:     "title",
		Size:    100,
		Default: strRef("untitled"),
	})
	require.NoError(t, err)

	// omitting the default clears it
	updated, err := engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{Size: 200})
	require.NoError(t, err)
	require.Equal(t, 200, updated.Size)
	require.Nil(t, updated.Default)

	_, err = engine.UpdateAttribute(ctx, "articles", "title", nil)
	require.ErrorIs(t, err, schema.ErrIllegalArguments)

	_, err = engine.UpdateAttribute(ctx, "articles", "missing", schema.StringAttributeUpdate{Size: 10})
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	// the request kind must match the stored type and format
	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.IntegerAttributeUpdate{})
	require.ErrorIs(t, err, schema.ErrAttributeTypeInvalid)

	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.EmailAttributeUpdate{})
	require.ErrorIs(t, err, schema.ErrAttributeTypeInvalid)
}

func TestUpdateAttributeNotAvailable(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	attr, err := engine.GetAttribute(ctx, "articles", "title")
	require.NoError(t, err)

	attr.Status = schema.StatusStuck
	require.NoError(t, store.UpdateAttribute(ctx, "articles", attr))

	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{Size: 200})
	require.ErrorIs(t, err, schema.ErrAttributeNotAvailable)
}

func TestUpdateAttributeResizeRejected(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	store.FailApplyAttributeUpdate(schema.ErrTruncationNotAllowed)

	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{Size: 10})
	require.ErrorIs(t, err, schema.ErrAttributeInvalidResize)

	// the metadata still carries the old size
	attr, err := engine.GetAttribute(ctx, "articles", "title")
	require.NoError(t, err)
	require.Equal(t, 100, attr.Size)
}

func TestUpdateIntegerWidens(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	attr, err := engine.CreateAttribute(ctx, "articles", schema.IntegerAttributeRequest{
		Key: "views",
		Min: intRef(0),
		Max: intRef(1000),
	})
	require.NoError(t, err)
	require.Equal(t, 4, attr.Size)

	updated, err := engine.UpdateAttribute(ctx, "articles", "views", schema.IntegerAttributeUpdate{
		Min: intRef(0),
		Max: intRef(math.MaxInt32 + 1),
	})
	require.NoError(t, err)
	require.Equal(t, 8, updated.Size)
}

func TestRenameAttribute(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	articles := makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	renamed, err := engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{
		Size:   100,
		NewKey: "headline",
	})
	require.NoError(t, err)
	require.Equal(t, "headline", renamed.Key)
	require.Equal(t, derivedID(articles.Sequence, "headline"), renamed.ID)

	_, err = engine.GetAttribute(ctx, "articles", "title")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	_, err = engine.GetAttribute(ctx, "articles", "headline")
	require.NoError(t, err)
}

func TestRenameAttributeRestoresOnFailure(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	// the re-creation under the new identity fails, the restore succeeds
	store.QueueCreateAttributeError(schema.ErrDuplicateKey)

	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{
		Size:   100,
		NewKey: "headline",
	})
	require.ErrorIs(t, err, schema.ErrAttributeAlreadyExists)

	attr, err := engine.GetAttribute(ctx, "articles", "title")
	require.NoError(t, err)
	require.Equal(t, 100, attr.Size)

	_, err = engine.GetAttribute(ctx, "articles", "headline")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestUpdateTwoWayPropagatesToTwin(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")
	makeCollection(t, engine, "users")

	_, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "articles",
		OnDelete:          schema.OnDeleteRestrict,
	})
	require.NoError(t, err)

	_, err = engine.UpdateAttribute(ctx, "articles", "author", schema.RelationshipAttributeUpdate{
		OnDelete: schema.OnDeleteCascade,
	})
	require.NoError(t, err)

	twin, err := engine.GetAttribute(ctx, "users", "articles")
	require.NoError(t, err)
	require.Equal(t, schema.OnDeleteCascade, twin.Options.OnDelete)

	// renaming the parent repoints the twin's inverse key
	_, err = engine.UpdateAttribute(ctx, "articles", "author", schema.RelationshipAttributeUpdate{
		NewKey: "writer",
	})
	require.NoError(t, err)

	twin, err = engine.GetAttribute(ctx, "users", "articles")
	require.NoError(t, err)
	require.Equal(t, "writer", twin.Options.TwoWayKey)
}

type captureNotifier struct {
	events []*schema.Event
}

func (n *captureNotifier) SchemaChanged(ctx context.Context, event *schema.Event) {
	n.events = append(n.events, event)
}

func TestUpdateEmitsNotification(t *testing.T) {
	notifier := &captureNotifier{}
	store := memory.Open()

	engine, err := schema.NewEngine(store, schema.DefaultOptions().
		WithLogger(logger.NewMemoryLogger()).
		WithNotifier(notifier))
	require.NoError(t, err)

	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	_, err = engine.UpdateAttribute(ctx, "articles", "title", schema.StringAttributeUpdate{Size: 200})
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	require.NotEmpty(t, notifier.events[0].ID)
	require.Equal(t, "articles", notifier.events[0].CollectionID)
	require.Equal(t, "title", notifier.events[0].AttributeKey)
	require.Equal(t, "update", notifier.events[0].Action)
	require.False(t, notifier.events[0].OccurredAt.IsZero())
}

func TestDeleteAttribute(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 100})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteAttribute(ctx, "articles", "title"))

	_, err = engine.GetAttribute(ctx, "articles", "title")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	require.ErrorIs(t, engine.DeleteAttribute(ctx, "articles", "title"), schema.ErrAttributeNotFound)
}

func TestDeleteTwoWayRemovesBothSides(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")
	makeCollection(t, engine, "users")

	_, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
		TwoWay:            true,
		TwoWayKey:         "articles",
	})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteAttribute(ctx, "articles", "author"))

	_, err = engine.GetAttribute(ctx, "articles", "author")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)

	_, err = engine.GetAttribute(ctx, "users", "articles")
	require.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestListAttributes(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	for _, key := range []string{"one", "two", "three"} {
		_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: key, Size: 10})
		require.NoError(t, err)
	}

	list, err := engine.ListAttributes(ctx, "articles", nil)
	require.NoError(t, err)
	require.Equal(t, 3, list.Total)
	require.Equal(t, "one", list.Attributes[0].Key)

	list, err = engine.ListAttributes(ctx, "articles", &schema.ListOptions{Offset: 2})
	require.NoError(t, err)
	require.Equal(t, 3, list.Total)
	require.Len(t, list.Attributes, 1)
	require.Equal(t, "three", list.Attributes[0].Key)
}
