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

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuvix-dev/nuvix/embedded/schema"
)

func TestCollectionRoundtrip(t *testing.T) {
	store := Open()
	ctx := context.Background()

	coll, err := store.GetCollection(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, coll)

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles", Name: "Articles"}))
	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "users", Name: "Users"}))

	// sequences are assigned in creation order
	coll, err = store.GetCollection(ctx, "articles")
	require.NoError(t, err)
	require.Equal(t, int64(1), coll.Sequence)

	coll, err = store.GetCollection(ctx, "users")
	require.NoError(t, err)
	require.Equal(t, int64(2), coll.Sequence)

	err = store.CreateCollection(ctx, &schema.Collection{ID: "articles"})
	require.ErrorIs(t, err, schema.ErrDuplicateKey)

	collections, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	require.Equal(t, "articles", collections[0].ID)

	require.NoError(t, store.DeleteCollection(ctx, "articles"))

	collections, err = store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	require.Equal(t, "users", collections[0].ID)
}

func TestAttributeRoundtrip(t *testing.T) {
	store := Open()
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles"}))

	attr := &schema.Attribute{ID: "a1", Key: "title", Type: schema.TypeString, Status: schema.StatusPending, Size: 100}
	require.NoError(t, store.CreateAttribute(ctx, "articles", attr))

	err := store.CreateAttribute(ctx, "articles", &schema.Attribute{ID: "a2", Key: "TITLE"})
	require.ErrorIs(t, err, schema.ErrDuplicateKey)

	err = store.CreateAttribute(ctx, "missing", attr)
	require.ErrorIs(t, err, schema.ErrCollectionNotFound)

	got, err := store.GetAttribute(ctx, "articles", "a1")
	require.NoError(t, err)
	require.Equal(t, "title", got.Key)

	got.Size = 200
	require.NoError(t, store.UpdateAttribute(ctx, "articles", got))

	got, err = store.GetAttribute(ctx, "articles", "a1")
	require.NoError(t, err)
	require.Equal(t, 200, got.Size)

	// deleting is idempotent
	require.NoError(t, store.DeleteAttribute(ctx, "articles", "a1"))
	require.NoError(t, store.DeleteAttribute(ctx, "articles", "a1"))

	got, err = store.GetAttribute(ctx, "articles", "a1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAttributeCapacity(t *testing.T) {
	store := OpenWith(DefaultOptions().WithMaxAttributes(1))
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles"}))
	require.NoError(t, store.CreateAttribute(ctx, "articles", &schema.Attribute{ID: "a1", Key: "one"}))

	err := store.CreateAttribute(ctx, "articles", &schema.Attribute{ID: "a2", Key: "two"})
	require.ErrorIs(t, err, schema.ErrCapacityExceeded)
}

func TestApplyAttributeFlipsStatus(t *testing.T) {
	store := Open()
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles"}))

	attr := &schema.Attribute{ID: "a1", Key: "title", Status: schema.StatusPending}
	require.NoError(t, store.CreateAttribute(ctx, "articles", attr))

	coll, err := store.GetCollection(ctx, "articles")
	require.NoError(t, err)

	require.NoError(t, store.ApplyAttribute(ctx, coll, attr))

	got, err := store.GetAttribute(ctx, "articles", "a1")
	require.NoError(t, err)
	require.Equal(t, schema.StatusAvailable, got.Status)
}

func TestFailureInjection(t *testing.T) {
	store := Open()
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles"}))

	coll, err := store.GetCollection(ctx, "articles")
	require.NoError(t, err)

	boom := errors.New("boom")

	store.FailApplyCollection(boom)
	require.ErrorIs(t, store.ApplyCollection(ctx, coll), boom)
	store.FailApplyCollection(nil)
	require.NoError(t, store.ApplyCollection(ctx, coll))

	store.QueueCreateAttributeError(boom)
	err = store.CreateAttribute(ctx, "articles", &schema.Attribute{ID: "a1", Key: "one"})
	require.ErrorIs(t, err, boom)

	// the queue is consumed, the next call goes through
	require.NoError(t, store.CreateAttribute(ctx, "articles", &schema.Attribute{ID: "a1", Key: "one"}))
}

func TestIndexRoundtrip(t *testing.T) {
	store := OpenWith(DefaultOptions().WithMaxIndexes(2))
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, &schema.Collection{ID: "articles"}))

	index := &schema.Index{ID: "i1", Key: "by_title", Type: schema.IndexTypeKey, Attributes: []string{"title"}, Status: schema.StatusPending}
	require.NoError(t, store.CreateIndex(ctx, "articles", index))

	err := store.CreateIndex(ctx, "articles", &schema.Index{ID: "i2", Key: "BY_TITLE"})
	require.ErrorIs(t, err, schema.ErrDuplicateKey)

	count, err := store.CountIndexes(ctx, "articles")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	coll, err := store.GetCollection(ctx, "articles")
	require.NoError(t, err)

	require.NoError(t, store.ApplyIndex(ctx, coll, index))

	got, err := store.GetIndex(ctx, "articles", "i1")
	require.NoError(t, err)
	require.Equal(t, schema.StatusAvailable, got.Status)

	require.NoError(t, store.DropIndex(ctx, coll, index))

	got, err = store.GetIndex(ctx, "articles", "i1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInvalidations(t *testing.T) {
	store := Open()
	ctx := context.Background()

	require.NoError(t, store.InvalidateCollection(ctx, "articles"))
	require.NoError(t, store.InvalidateAttribute(ctx, "articles", "title"))

	require.Equal(t, []string{
		"collection:articles",
		"attribute:articles:title",
	}, store.Invalidations())
}

func TestLimits(t *testing.T) {
	store := Open()
	require.Equal(t, DefaultMaxIndexes, store.MaxIndexes())
	require.Equal(t, DefaultMaxIndexKeyLength, store.MaxIndexKeyLength())
}
