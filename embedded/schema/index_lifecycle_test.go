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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuvix-dev/nuvix/embedded/schema"
	"github.com/nuvix-dev/nuvix/pkg/store/memory"
)

func makeIndexedCollection(t *testing.T, engine *schema.Engine) {
	makeCollection(t, engine, "articles")
	ctx := context.Background()

	_, err := engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "title", Size: 255})
	require.NoError(t, err)

	_, err = engine.CreateAttribute(ctx, "articles", schema.IntegerAttributeRequest{Key: "views"})
	require.NoError(t, err)

	_, err = engine.CreateAttribute(ctx, "articles", schema.StringAttributeRequest{Key: "tags", Size: 50, Array: true})
	require.NoError(t, err)
}

func TestCreateIndex(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	index, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_title",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title", "views"},
		Orders:     []string{schema.OrderAsc, schema.OrderDesc},
	})
	require.NoError(t, err)
	require.Equal(t, schema.StatusPending, index.Status)
	require.Equal(t, []string{schema.OrderAsc, schema.OrderDesc}, index.Orders)

	stored, err := engine.GetIndex(ctx, "articles", "by_title")
	require.NoError(t, err)
	require.Equal(t, schema.StatusAvailable, stored.Status)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "BY_TITLE",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrIndexAlreadyExists)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "$reserved",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrValueInvalid)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "bad_type",
		Type:       "spatial",
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrValueInvalid)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:  "empty",
		Type: schema.IndexTypeKey,
	})
	require.ErrorIs(t, err, schema.ErrValueInvalid)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "bad_order",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
		Orders:     []string{"SIDEWAYS"},
	})
	require.ErrorIs(t, err, schema.ErrValueInvalid)
}

func TestCreateIndexOnSyntheticAttributes(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeCollection(t, engine, "articles")

	// synthetic document fields are indexable without declared attributes
	index, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_created",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"$id", "$createdAt", "$updatedAt"},
	})
	require.NoError(t, err)
	require.Len(t, index.Attributes, 3)
}

func TestCreateIndexAttributeChecks(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)
	makeCollection(t, engine, "users")

	_, err := engine.CreateAttribute(ctx, "articles", schema.RelationshipAttributeRequest{
		Key:               "author",
		RelatedCollection: "users",
		RelationType:      schema.RelationManyToOne,
	})
	require.NoError(t, err)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_missing",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"missing"},
	})
	require.ErrorIs(t, err, schema.ErrAttributeUnknown)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_author",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"author"},
	})
	require.ErrorIs(t, err, schema.ErrAttributeTypeInvalid)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "ft_views",
		Type:       schema.IndexTypeFulltext,
		Attributes: []string{"views"},
	})
	require.ErrorIs(t, err, schema.ErrIndexInvalid)

	// a pending attribute is not indexable yet
	attr, err := engine.GetAttribute(ctx, "articles", "title")
	require.NoError(t, err)
	attr.Status = schema.StatusPending
	require.NoError(t, store.UpdateAttribute(ctx, "articles", attr))

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_title",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrAttributeNotAvailable)
}

func TestCreateIndexNullsArrayOrders(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	index, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_tags",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"tags", "views"},
		Orders:     []string{schema.OrderDesc, schema.OrderDesc},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"", schema.OrderDesc}, index.Orders)
}

func TestCreateIndexLimits(t *testing.T) {
	engine, _ := makeEngineWith(t, memory.DefaultOptions().WithMaxIndexes(1))
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	_, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "first",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"views"},
	})
	require.NoError(t, err)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "second",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrIndexLimitExceeded)
}

func TestCreateIndexKeyLength(t *testing.T) {
	engine, _ := makeEngineWith(t, memory.DefaultOptions().WithMaxIndexKeyLength(100))
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	// title alone weighs 255 bytes, over the 100 byte budget
	_, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_title",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.ErrorIs(t, err, schema.ErrIndexInvalid)

	_, err = engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_views",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"views"},
	})
	require.NoError(t, err)
}

func TestCreateIndexApplyFailureLeavesPending(t *testing.T) {
	engine, store := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	store.FailApplyIndex(errors.New("build queue unavailable"))

	_, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_title",
		Type:       schema.IndexTypeKey,
		Attributes: []string{"title"},
	})
	require.EqualError(t, err, "build queue unavailable")

	// no compensation: the record stays pending for the apply worker
	index, err := engine.GetIndex(ctx, "articles", "by_title")
	require.NoError(t, err)
	require.Equal(t, schema.StatusPending, index.Status)
}

func TestDeleteIndex(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	_, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
		Key:        "by_title",
		Type:       schema.IndexTypeUnique,
		Attributes: []string{"title"},
	})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteIndex(ctx, "articles", "by_title"))

	_, err = engine.GetIndex(ctx, "articles", "by_title")
	require.ErrorIs(t, err, schema.ErrIndexNotFound)

	require.ErrorIs(t, engine.DeleteIndex(ctx, "articles", "by_title"), schema.ErrIndexNotFound)
}

func TestListIndexes(t *testing.T) {
	engine, _ := makeEngine(t)
	ctx := context.Background()

	makeIndexedCollection(t, engine)

	for _, key := range []string{"one", "two"} {
		_, err := engine.CreateIndex(ctx, "articles", schema.IndexRequest{
			Key:        key,
			Type:       schema.IndexTypeKey,
			Attributes: []string{"views"},
		})
		require.NoError(t, err)
	}

	list, err := engine.ListIndexes(ctx, "articles", nil)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	require.Equal(t, "one", list.Indexes[0].Key)

	list, err = engine.ListIndexes(ctx, "articles", &schema.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	require.Len(t, list.Indexes, 1)
}
