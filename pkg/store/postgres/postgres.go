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

// Package postgres provides a schema.Store backed by PostgreSQL. Metadata
// records live in namespaced catalog tables; the physical schema is a real
// table per collection, altered with DDL as attributes and indexes change.
// There is no standalone apply worker: DDL runs synchronously in the Apply
// calls and records are marked available in the same call.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuvix-dev/nuvix/embedded/schema"
)

var _ schema.Store = (*Store)(nil)

// Store implements schema.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	opts *Options
}

// Open connects to the database and verifies the connection. It does not
// create the catalog tables; call Init once per namespace for that.
func Open(ctx context.Context, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, opts.dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		pool: pool,
		opts: opts,
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) collectionsTable() string {
	return s.opts.namespace + "_collections"
}

func (s *Store) attributesTable() string {
	return s.opts.namespace + "_attributes"
}

func (s *Store) indexesTable() string {
	return s.opts.namespace + "_indexes"
}

// Init creates the catalog tables for the configured namespace. It is
// idempotent.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			seq BIGINT GENERATED ALWAYS AS IDENTITY UNIQUE,
			name VARCHAR(255) NOT NULL,
			enabled BOOLEAN NOT NULL,
			document_security BOOLEAN NOT NULL,
			permissions JSONB NOT NULL DEFAULT '[]',
			search TEXT NOT NULL DEFAULT ''
		)`, quoteIdent(s.collectionsTable())),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			collection_id VARCHAR(255) NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			id VARCHAR(255) NOT NULL,
			key VARCHAR(255) NOT NULL,
			type VARCHAR(32) NOT NULL,
			status VARCHAR(32) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			required BOOLEAN NOT NULL DEFAULT false,
			is_array BOOLEAN NOT NULL DEFAULT false,
			default_value JSONB,
			format VARCHAR(32) NOT NULL DEFAULT '',
			format_options JSONB,
			filters JSONB,
			options JSONB,
			pos BIGINT GENERATED ALWAYS AS IDENTITY,
			PRIMARY KEY (collection_id, id)
		)`, quoteIdent(s.attributesTable()), quoteIdent(s.collectionsTable())),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (collection_id, lower(key))`,
			quoteIdent(s.attributesTable()+"_key_uq"), quoteIdent(s.attributesTable())),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			collection_id VARCHAR(255) NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			id VARCHAR(255) NOT NULL,
			key VARCHAR(255) NOT NULL,
			type VARCHAR(32) NOT NULL,
			attributes JSONB NOT NULL,
			orders JSONB NOT NULL,
			status VARCHAR(32) NOT NULL,
			pos BIGINT GENERATED ALWAYS AS IDENTITY,
			PRIMARY KEY (collection_id, id)
		)`, quoteIdent(s.indexesTable()), quoteIdent(s.collectionsTable())),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (collection_id, lower(key))`,
			quoteIdent(s.indexesTable()+"_key_uq"), quoteIdent(s.indexesTable())),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return translateError(err)
		}
	}

	s.opts.logger.Infof("catalog tables ready for namespace %q", s.opts.namespace)

	return nil
}

func (s *Store) GetCollection(ctx context.Context, id string) (*schema.Collection, error) {
	query := fmt.Sprintf(
		"SELECT id, seq, name, enabled, document_security, permissions, search FROM %s WHERE id = $1",
		quoteIdent(s.collectionsTable()))

	coll, err := s.scanCollection(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := s.loadCollectionSchema(ctx, coll); err != nil {
		return nil, err
	}

	return coll, nil
}

func (s *Store) CreateCollection(ctx context.Context, collection *schema.Collection) error {
	permissions, err := json.Marshal(collection.Permissions)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, name, enabled, document_security, permissions, search) VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq",
		quoteIdent(s.collectionsTable()))

	err = s.pool.QueryRow(ctx, query,
		collection.ID,
		collection.Name,
		collection.Enabled,
		collection.DocumentSecurity,
		permissions,
		collection.SearchText,
	).Scan(&collection.Sequence)

	return translateError(err)
}

func (s *Store) UpdateCollection(ctx context.Context, collection *schema.Collection) error {
	permissions, err := json.Marshal(collection.Permissions)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET name = $2, enabled = $3, document_security = $4, permissions = $5, search = $6 WHERE id = $1",
		quoteIdent(s.collectionsTable()))

	tag, err := s.pool.Exec(ctx, query,
		collection.ID,
		collection.Name,
		collection.Enabled,
		collection.DocumentSecurity,
		permissions,
		collection.SearchText,
	)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return schema.ErrCollectionNotFound
	}

	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", quoteIdent(s.collectionsTable()))

	_, err := s.pool.Exec(ctx, query, id)

	return translateError(err)
}

func (s *Store) ListCollections(ctx context.Context) ([]*schema.Collection, error) {
	query := fmt.Sprintf(
		"SELECT id, seq, name, enabled, document_security, permissions, search FROM %s ORDER BY seq",
		quoteIdent(s.collectionsTable()))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var collections []*schema.Collection
	for rows.Next() {
		coll, err := s.scanCollection(rows)
		if err != nil {
			return nil, translateError(err)
		}
		collections = append(collections, coll)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	for _, coll := range collections {
		if err := s.loadCollectionSchema(ctx, coll); err != nil {
			return nil, err
		}
	}

	return collections, nil
}

func (s *Store) GetAttribute(ctx context.Context, collectionID, attributeID string) (*schema.Attribute, error) {
	query := fmt.Sprintf(
		"SELECT id, key, type, status, size, required, is_array, default_value, format, format_options, filters, options FROM %s WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.attributesTable()))

	attr, err := scanAttribute(s.pool.QueryRow(ctx, query, collectionID, attributeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	return attr, nil
}

func (s *Store) CreateAttribute(ctx context.Context, collectionID string, attribute *schema.Attribute) error {
	count, err := s.countRows(ctx, s.attributesTable(), collectionID)
	if err != nil {
		return err
	}
	if count >= s.opts.maxAttributes {
		return schema.ErrCapacityExceeded
	}

	defaultValue, formatOptions, filters, options, err := marshalAttributeColumns(attribute)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (collection_id, id, key, type, status, size, required, is_array, default_value, format, format_options, filters, options)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		quoteIdent(s.attributesTable()))

	_, err = s.pool.Exec(ctx, query,
		collectionID,
		attribute.ID,
		attribute.Key,
		attribute.Type,
		attribute.Status,
		attribute.Size,
		attribute.Required,
		attribute.Array,
		defaultValue,
		attribute.Format,
		formatOptions,
		filters,
		options,
	)

	return translateError(err)
}

func (s *Store) UpdateAttribute(ctx context.Context, collectionID string, attribute *schema.Attribute) error {
	defaultValue, formatOptions, filters, options, err := marshalAttributeColumns(attribute)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE %s SET key = $3, type = $4, status = $5, size = $6, required = $7, is_array = $8,
		 default_value = $9, format = $10, format_options = $11, filters = $12, options = $13
		 WHERE collection_id = $1 AND id = $2`,
		quoteIdent(s.attributesTable()))

	tag, err := s.pool.Exec(ctx, query,
		collectionID,
		attribute.ID,
		attribute.Key,
		attribute.Type,
		attribute.Status,
		attribute.Size,
		attribute.Required,
		attribute.Array,
		defaultValue,
		attribute.Format,
		formatOptions,
		filters,
		options,
	)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return schema.ErrAttributeNotFound
	}

	return nil
}

func (s *Store) DeleteAttribute(ctx context.Context, collectionID, attributeID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.attributesTable()))

	_, err := s.pool.Exec(ctx, query, collectionID, attributeID)

	return translateError(err)
}

func (s *Store) GetIndex(ctx context.Context, collectionID, indexID string) (*schema.Index, error) {
	query := fmt.Sprintf(
		"SELECT id, key, type, attributes, orders, status FROM %s WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.indexesTable()))

	index, err := scanIndex(s.pool.QueryRow(ctx, query, collectionID, indexID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	return index, nil
}

func (s *Store) CreateIndex(ctx context.Context, collectionID string, index *schema.Index) error {
	count, err := s.countRows(ctx, s.indexesTable(), collectionID)
	if err != nil {
		return err
	}
	if count >= s.opts.maxIndexes {
		return schema.ErrCapacityExceeded
	}

	attributes, err := json.Marshal(index.Attributes)
	if err != nil {
		return err
	}
	orders, err := json.Marshal(index.Orders)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (collection_id, id, key, type, attributes, orders, status) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		quoteIdent(s.indexesTable()))

	_, err = s.pool.Exec(ctx, query,
		collectionID,
		index.ID,
		index.Key,
		index.Type,
		attributes,
		orders,
		index.Status,
	)

	return translateError(err)
}

func (s *Store) UpdateIndex(ctx context.Context, collectionID string, index *schema.Index) error {
	attributes, err := json.Marshal(index.Attributes)
	if err != nil {
		return err
	}
	orders, err := json.Marshal(index.Orders)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET key = $3, type = $4, attributes = $5, orders = $6, status = $7 WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.indexesTable()))

	tag, err := s.pool.Exec(ctx, query,
		collectionID,
		index.ID,
		index.Key,
		index.Type,
		attributes,
		orders,
		index.Status,
	)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return schema.ErrIndexNotFound
	}

	return nil
}

func (s *Store) CountIndexes(ctx context.Context, collectionID string) (int, error) {
	return s.countRows(ctx, s.indexesTable(), collectionID)
}

func (s *Store) ApplyCollection(ctx context.Context, collection *schema.Collection) error {
	table := physicalTableName(s.opts.namespace, collection.Sequence)

	_, err := s.pool.Exec(ctx, buildCreateTable(table))

	return translateError(err)
}

func (s *Store) ApplyAttribute(ctx context.Context, collection *schema.Collection, attributes ...*schema.Attribute) error {
	table := physicalTableName(s.opts.namespace, collection.Sequence)

	for _, attribute := range attributes {
		if err := s.applyAttribute(ctx, table, collection, attribute); err != nil {
			return err
		}

		if err := s.setAttributeStatus(ctx, attribute.ID, schema.StatusAvailable); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) applyAttribute(ctx context.Context, table string, collection *schema.Collection, attribute *schema.Attribute) error {
	if attribute.Type != schema.TypeRelationship {
		stmt, err := buildAddColumn(table, attribute)
		if err != nil {
			return err
		}

		s.opts.logger.Debugf("applying attribute %q: %s", attribute.Key, stmt)

		_, err = s.pool.Exec(ctx, stmt)

		return translateError(err)
	}

	opts := attribute.Options
	if opts == nil || opts.Side == schema.SideChild {
		// the child side is bookkeeping only
		return nil
	}

	if opts.RelationType == schema.RelationManyToMany {
		junction := junctionTableName(s.opts.namespace, collection.Sequence, attribute.Key)
		_, err := s.pool.Exec(ctx, buildJunctionTable(junction))
		return translateError(err)
	}

	_, err := s.pool.Exec(ctx, buildAddRelationshipColumn(table, attribute.Key))

	return translateError(err)
}

func (s *Store) ApplyAttributeUpdate(ctx context.Context, collection *schema.Collection, attribute *schema.Attribute, newKey string) error {
	table := physicalTableName(s.opts.namespace, collection.Sequence)
	column := physicalColumnName(attribute.Key)

	if attribute.Type == schema.TypeRelationship {
		return s.applyRelationshipRename(ctx, table, collection, attribute, newKey)
	}

	if attribute.Type == schema.TypeString && !attribute.Array && attribute.Size > 0 {
		if err := s.checkTruncation(ctx, table, column, attribute.Size); err != nil {
			return err
		}
	}

	typ, err := columnType(attribute)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, buildAlterColumnType(table, column, typ)); err != nil {
		return translateError(err)
	}

	if literal, ok := defaultLiteral(attribute); ok {
		_, err = s.pool.Exec(ctx, buildSetColumnDefault(table, column, literal))
	} else {
		_, err = s.pool.Exec(ctx, buildDropColumnDefault(table, column))
	}
	if err != nil {
		return translateError(err)
	}

	if newKey != "" {
		_, err := s.pool.Exec(ctx, buildRenameColumn(table, column, physicalColumnName(newKey)))
		if err != nil {
			return translateError(err)
		}
	}

	return nil
}

func (s *Store) applyRelationshipRename(ctx context.Context, table string, collection *schema.Collection, attribute *schema.Attribute, newKey string) error {
	if newKey == "" {
		return nil
	}

	opts := attribute.Options
	if opts == nil || opts.Side == schema.SideChild {
		return nil
	}

	if opts.RelationType == schema.RelationManyToMany {
		oldJunction := junctionTableName(s.opts.namespace, collection.Sequence, attribute.Key)
		newJunction := junctionTableName(s.opts.namespace, collection.Sequence, newKey)

		_, err := s.pool.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
			quoteIdent(oldJunction), quoteIdent(newJunction)))

		return translateError(err)
	}

	_, err := s.pool.Exec(ctx, buildRenameColumn(table,
		physicalColumnName(attribute.Key), physicalColumnName(newKey)))

	return translateError(err)
}

// checkTruncation rejects a size change that would cut stored values.
func (s *Store) checkTruncation(ctx context.Context, table, column string, size int) error {
	query := fmt.Sprintf("SELECT COALESCE(MAX(CHAR_LENGTH(%s)), 0) FROM %s",
		quoteIdent(column), quoteIdent(table))

	var longest int
	if err := s.pool.QueryRow(ctx, query).Scan(&longest); err != nil {
		return translateError(err)
	}

	if longest > size {
		return schema.ErrTruncationNotAllowed
	}

	return nil
}

func (s *Store) ApplyIndex(ctx context.Context, collection *schema.Collection, index *schema.Index) error {
	table := physicalTableName(s.opts.namespace, collection.Sequence)
	name := physicalIndexName(s.opts.namespace, collection.Sequence, index.Key)

	if _, err := s.pool.Exec(ctx, buildCreateIndex(table, name, index)); err != nil {
		return translateError(err)
	}

	query := fmt.Sprintf("UPDATE %s SET status = $3 WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.indexesTable()))

	_, err := s.pool.Exec(ctx, query, collection.ID, index.ID, schema.StatusAvailable)

	return translateError(err)
}

func (s *Store) DropAttribute(ctx context.Context, collection *schema.Collection, attribute *schema.Attribute) error {
	if err := s.DeleteAttribute(ctx, collection.ID, attribute.ID); err != nil {
		return err
	}

	table := physicalTableName(s.opts.namespace, collection.Sequence)

	if attribute.Type != schema.TypeRelationship {
		_, err := s.pool.Exec(ctx, buildDropColumn(table, physicalColumnName(attribute.Key)))
		return translateError(err)
	}

	opts := attribute.Options
	if opts == nil || opts.Side == schema.SideChild {
		return nil
	}

	if opts.RelationType == schema.RelationManyToMany {
		junction := junctionTableName(s.opts.namespace, collection.Sequence, attribute.Key)
		_, err := s.pool.Exec(ctx, buildDropTable(junction))
		return translateError(err)
	}

	_, err := s.pool.Exec(ctx, buildDropColumn(table, physicalColumnName(attribute.Key)))

	return translateError(err)
}

func (s *Store) DropIndex(ctx context.Context, collection *schema.Collection, index *schema.Index) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE collection_id = $1 AND id = $2",
		quoteIdent(s.indexesTable()))

	if _, err := s.pool.Exec(ctx, query, collection.ID, index.ID); err != nil {
		return translateError(err)
	}

	name := physicalIndexName(s.opts.namespace, collection.Sequence, index.Key)

	_, err := s.pool.Exec(ctx, buildDropIndex(name))

	return translateError(err)
}

func (s *Store) DropCollection(ctx context.Context, collection *schema.Collection) error {
	for _, attribute := range collection.Attributes {
		opts := attribute.Options
		if attribute.Type != schema.TypeRelationship || opts == nil {
			continue
		}
		if opts.Side == schema.SideParent && opts.RelationType == schema.RelationManyToMany {
			junction := junctionTableName(s.opts.namespace, collection.Sequence, attribute.Key)
			if _, err := s.pool.Exec(ctx, buildDropTable(junction)); err != nil {
				return translateError(err)
			}
		}
	}

	table := physicalTableName(s.opts.namespace, collection.Sequence)

	_, err := s.pool.Exec(ctx, buildDropTable(table))

	return translateError(err)
}

func (s *Store) InvalidateCollection(ctx context.Context, collectionID string) error {
	return s.opts.cache.Delete(ctx, "collection:"+collectionID)
}

func (s *Store) InvalidateAttribute(ctx context.Context, collectionID, key string) error {
	return s.opts.cache.Delete(ctx, "attribute:"+collectionID+":"+key)
}

func (s *Store) MaxIndexes() int {
	return s.opts.maxIndexes
}

func (s *Store) MaxIndexKeyLength() int {
	return s.opts.maxIndexKeyLength
}

func (s *Store) countRows(ctx context.Context, table, collectionID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE collection_id = $1", quoteIdent(table))

	var count int
	if err := s.pool.QueryRow(ctx, query, collectionID).Scan(&count); err != nil {
		return 0, translateError(err)
	}

	return count, nil
}

func (s *Store) setAttributeStatus(ctx context.Context, attributeID string, status schema.Status) error {
	query := fmt.Sprintf("UPDATE %s SET status = $2 WHERE id = $1", quoteIdent(s.attributesTable()))

	_, err := s.pool.Exec(ctx, query, attributeID, status)

	return translateError(err)
}

func (s *Store) scanCollection(row pgx.Row) (*schema.Collection, error) {
	var (
		coll        schema.Collection
		permissions []byte
	)

	err := row.Scan(
		&coll.ID,
		&coll.Sequence,
		&coll.Name,
		&coll.Enabled,
		&coll.DocumentSecurity,
		&permissions,
		&coll.SearchText,
	)
	if err != nil {
		return nil, err
	}

	if len(permissions) > 0 {
		if err := json.Unmarshal(permissions, &coll.Permissions); err != nil {
			return nil, err
		}
	}

	return &coll, nil
}

func (s *Store) loadCollectionSchema(ctx context.Context, coll *schema.Collection) error {
	query := fmt.Sprintf(
		"SELECT id, key, type, status, size, required, is_array, default_value, format, format_options, filters, options FROM %s WHERE collection_id = $1 ORDER BY pos",
		quoteIdent(s.attributesTable()))

	rows, err := s.pool.Query(ctx, query, coll.ID)
	if err != nil {
		return translateError(err)
	}
	defer rows.Close()

	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return translateError(err)
		}
		coll.Attributes = append(coll.Attributes, attr)
	}
	if err := rows.Err(); err != nil {
		return translateError(err)
	}

	query = fmt.Sprintf(
		"SELECT id, key, type, attributes, orders, status FROM %s WHERE collection_id = $1 ORDER BY pos",
		quoteIdent(s.indexesTable()))

	idxRows, err := s.pool.Query(ctx, query, coll.ID)
	if err != nil {
		return translateError(err)
	}
	defer idxRows.Close()

	for idxRows.Next() {
		index, err := scanIndex(idxRows)
		if err != nil {
			return translateError(err)
		}
		coll.Indexes = append(coll.Indexes, index)
	}

	return translateError(idxRows.Err())
}

func scanAttribute(row pgx.Row) (*schema.Attribute, error) {
	var (
		attr          schema.Attribute
		defaultValue  []byte
		formatOptions []byte
		filters       []byte
		options       []byte
	)

	err := row.Scan(
		&attr.ID,
		&attr.Key,
		&attr.Type,
		&attr.Status,
		&attr.Size,
		&attr.Required,
		&attr.Array,
		&defaultValue,
		&attr.Format,
		&formatOptions,
		&filters,
		&options,
	)
	if err != nil {
		return nil, err
	}

	attr.Default, err = decodeDefault(attr.Type, defaultValue)
	if err != nil {
		return nil, err
	}

	if len(formatOptions) > 0 {
		if err := json.Unmarshal(formatOptions, &attr.FormatOptions); err != nil {
			return nil, err
		}
	}

	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &attr.Filters); err != nil {
			return nil, err
		}
	}

	if len(options) > 0 {
		attr.Options = &schema.RelationshipOptions{}
		if err := json.Unmarshal(options, attr.Options); err != nil {
			return nil, err
		}
	}

	return &attr, nil
}

func scanIndex(row pgx.Row) (*schema.Index, error) {
	var (
		index      schema.Index
		attributes []byte
		orders     []byte
	)

	err := row.Scan(
		&index.ID,
		&index.Key,
		&index.Type,
		&attributes,
		&orders,
		&index.Status,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attributes, &index.Attributes); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(orders, &index.Orders); err != nil {
		return nil, err
	}

	return &index, nil
}

func marshalAttributeColumns(attribute *schema.Attribute) (defaultValue, formatOptions, filters, options []byte, err error) {
	if attribute.Default != nil {
		defaultValue, err = json.Marshal(attribute.Default)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	formatOptions, err = json.Marshal(attribute.FormatOptions)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if len(attribute.Filters) > 0 {
		filters, err = json.Marshal(attribute.Filters)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	if attribute.Options != nil {
		options, err = json.Marshal(attribute.Options)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return defaultValue, formatOptions, filters, options, nil
}

// decodeDefault maps the stored JSON default back to the runtime type the
// compiler produced it with.
func decodeDefault(typ schema.AttributeType, data []byte) (any, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	switch typ {
	case schema.TypeInteger:
		var v int64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case schema.TypeFloat:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case schema.TypeBoolean:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// translateError maps Postgres error codes to the store sentinels the
// lifecycle engine compensates on.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "42701", "42P07": // unique_violation, duplicate_column, duplicate_table
			return schema.ErrDuplicateKey
		case "54011": // too_many_columns
			return schema.ErrCapacityExceeded
		case "22001": // string_data_right_truncation
			return schema.ErrTruncationNotAllowed
		}
	}

	return err
}
