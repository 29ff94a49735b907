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

package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nuvix-dev/nuvix/embedded/schema"
)

// Synthetic attributes live in fixed columns of every physical table.
const (
	columnID        = "_id"
	columnCreatedAt = "_created_at"
	columnUpdatedAt = "_updated_at"
)

func physicalTableName(namespace string, sequence int64) string {
	return fmt.Sprintf("%s_collection_%d", namespace, sequence)
}

func junctionTableName(namespace string, sequence int64, key string) string {
	return fmt.Sprintf("%s_collection_%d_%s", namespace, sequence, strings.ToLower(key))
}

func physicalIndexName(namespace string, sequence int64, key string) string {
	return fmt.Sprintf("%s_idx_%d_%s", namespace, sequence, strings.ToLower(key))
}

// physicalColumnName maps an attribute key to its column. Synthetic keys
// resolve to the fixed columns every table carries.
func physicalColumnName(key string) string {
	switch key {
	case "$id":
		return columnID
	case "$createdAt":
		return columnCreatedAt
	case "$updatedAt":
		return columnUpdatedAt
	}

	return strings.ToLower(key)
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteLiteral(literal string) string {
	return "'" + strings.ReplaceAll(literal, "'", "''") + "'"
}

// columnType returns the Postgres column type backing an attribute.
// Relationship attributes have no column type of their own.
func columnType(attribute *schema.Attribute) (string, error) {
	var base string

	switch attribute.Type {
	case schema.TypeString:
		if attribute.Size > 0 {
			base = fmt.Sprintf("VARCHAR(%d)", attribute.Size)
		} else {
			base = "TEXT"
		}
	case schema.TypeInteger:
		if attribute.Size == 8 {
			base = "BIGINT"
		} else {
			base = "INTEGER"
		}
	case schema.TypeFloat:
		base = "DOUBLE PRECISION"
	case schema.TypeBoolean:
		base = "BOOLEAN"
	case schema.TypeDatetime:
		base = "TIMESTAMPTZ"
	default:
		return "", fmt.Errorf("%w: no column type for %s attributes", schema.ErrAttributeTypeInvalid, attribute.Type)
	}

	if attribute.Array {
		base += "[]"
	}

	return base, nil
}

// defaultLiteral renders the attribute default as a SQL literal, when one
// is set. Array attributes never carry defaults.
func defaultLiteral(attribute *schema.Attribute) (string, bool) {
	if attribute.Default == nil {
		return "", false
	}

	switch v := attribute.Default.(type) {
	case string:
		return quoteLiteral(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}

	return "", false
}

func buildCreateTable(table string) string {
	var sb strings.Builder

	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(quoteIdent(table))
	sb.WriteString(" (")
	sb.WriteString(quoteIdent(columnID))
	sb.WriteString(" VARCHAR(255) PRIMARY KEY, ")
	sb.WriteString(quoteIdent(columnCreatedAt))
	sb.WriteString(" TIMESTAMPTZ NOT NULL DEFAULT now(), ")
	sb.WriteString(quoteIdent(columnUpdatedAt))
	sb.WriteString(" TIMESTAMPTZ NOT NULL DEFAULT now())")

	return sb.String()
}

// buildJunctionTable backs a many-to-many relationship with a two-column
// link table keyed on both sides.
func buildJunctionTable(table string) string {
	var sb strings.Builder

	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(quoteIdent(table))
	sb.WriteString(" (_parent VARCHAR(255) NOT NULL, _child VARCHAR(255) NOT NULL, PRIMARY KEY (_parent, _child))")

	return sb.String()
}

func buildAddColumn(table string, attribute *schema.Attribute) (string, error) {
	typ, err := columnType(attribute)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("ALTER TABLE ")
	sb.WriteString(quoteIdent(table))
	sb.WriteString(" ADD COLUMN IF NOT EXISTS ")
	sb.WriteString(quoteIdent(physicalColumnName(attribute.Key)))
	sb.WriteString(" ")
	sb.WriteString(typ)

	if literal, ok := defaultLiteral(attribute); ok {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(literal)
	}

	return sb.String(), nil
}

// buildAddRelationshipColumn links to the related collection by document id.
func buildAddRelationshipColumn(table, key string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s VARCHAR(255)",
		quoteIdent(table), quoteIdent(physicalColumnName(key)))
}

func buildDropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s",
		quoteIdent(table), quoteIdent(column))
}

func buildRenameColumn(table, oldColumn, newColumn string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		quoteIdent(table), quoteIdent(oldColumn), quoteIdent(newColumn))
}

func buildAlterColumnType(table, column, typ string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s",
		quoteIdent(table), quoteIdent(column), typ, quoteIdent(column), typ)
}

func buildSetColumnDefault(table, column, literal string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s",
		quoteIdent(table), quoteIdent(column), literal)
}

func buildDropColumnDefault(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT",
		quoteIdent(table), quoteIdent(column))
}

// buildCreateIndex renders the physical index DDL. Fulltext indexes become
// GIN indexes over a tsvector of the concatenated columns; the rest become
// plain btree indexes, unique when requested.
func buildCreateIndex(table, name string, index *schema.Index) string {
	var sb strings.Builder

	sb.WriteString("CREATE ")
	if index.Type == schema.IndexTypeUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX IF NOT EXISTS ")
	sb.WriteString(quoteIdent(name))
	sb.WriteString(" ON ")
	sb.WriteString(quoteIdent(table))

	if index.Type == schema.IndexTypeFulltext {
		sb.WriteString(" USING GIN (to_tsvector('simple', ")
		for i, attr := range index.Attributes {
			if i > 0 {
				sb.WriteString(" || ' ' || ")
			}
			sb.WriteString("coalesce(")
			sb.WriteString(quoteIdent(physicalColumnName(attr)))
			sb.WriteString(", '')")
		}
		sb.WriteString("))")

		return sb.String()
	}

	sb.WriteString(" (")
	for i, attr := range index.Attributes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdent(physicalColumnName(attr)))
		if i < len(index.Orders) && index.Orders[i] == schema.OrderDesc {
			sb.WriteString(" DESC")
		}
	}
	sb.WriteString(")")

	return sb.String()
}

func buildDropIndex(name string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", quoteIdent(name))
}

func buildDropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(table))
}
