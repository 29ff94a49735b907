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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	c "github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nuvix-dev/nuvix/embedded/logger"
	"github.com/nuvix-dev/nuvix/embedded/schema"
	"github.com/nuvix-dev/nuvix/pkg/cache"
	"github.com/nuvix-dev/nuvix/pkg/store/postgres"
)

// NewRootCmd builds the nuvix command tree. Every flag can also be set via
// a NUVIX_ environment variable, e.g. NUVIX_DSN.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nuvix",
		Short: "Schema metadata lifecycle engine",
		Long: `Manages dynamically-defined collections, their typed attributes and
secondary indexes on top of a PostgreSQL storage engine.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("dsn", "", "postgres connection string")
	cmd.PersistentFlags().String("namespace", postgres.DefaultNamespace, "table namespace prefix")
	cmd.PersistentFlags().String("redis-addr", "", "redis address for cache invalidation (optional)")
	cmd.PersistentFlags().String("log-level", "info", "log level (error, warn, info, debug)")

	viper.SetEnvPrefix("nuvix")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.PersistentFlags())

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCreateCollectionCmd())

	return cmd
}

func newLogger() logger.Logger {
	return logger.NewSimpleLoggerWithLevel("nuvix", os.Stderr,
		logger.LogLevelFromString(viper.GetString("log-level")))
}

func openStore(ctx context.Context, l logger.Logger) (*postgres.Store, error) {
	invalidator := cache.Cache(cache.Noop{})

	if addr := viper.GetString("redis-addr"); addr != "" {
		redis, err := cache.NewRedis(ctx, cache.DefaultRedisOptions().
			WithAddr(addr).
			WithPrefix(viper.GetString("namespace")))
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		invalidator = redis
	}

	return postgres.Open(ctx, postgres.DefaultOptions().
		WithDSN(viper.GetString("dsn")).
		WithNamespace(viper.GetString("namespace")).
		WithCache(invalidator).
		WithLogger(l))
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the metadata catalog tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, newLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Init(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "catalog initialized for namespace %s\n",
				c.GreenString(viper.GetString("namespace")))

			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List collections and their convergence state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, newLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := schema.NewEngine(store, schema.DefaultOptions().WithLogger(newLogger()))
			if err != nil {
				return err
			}

			list, err := engine.ListCollections(ctx, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if list.Total == 0 {
				fmt.Fprintln(out, "no collections")
				return nil
			}

			for _, coll := range list.Collections {
				fmt.Fprintf(out, "%s (%s)\n", c.CyanString(coll.ID), coll.Name)

				for _, attr := range coll.Attributes {
					fmt.Fprintf(out, "  attribute %-24s %-12s %s\n", attr.Key, attr.Type, colorStatus(attr.Status))
				}
				for _, index := range coll.Indexes {
					fmt.Fprintf(out, "  index     %-24s %-12s %s\n", index.Key, index.Type, colorStatus(index.Status))
				}
			}

			return nil
		},
	}
}

func colorStatus(status schema.Status) string {
	switch status {
	case schema.StatusAvailable:
		return c.GreenString(string(status))
	case schema.StatusPending, schema.StatusDeleting:
		return c.YellowString(string(status))
	default:
		return c.RedString(string(status))
	}
}

func newCreateCollectionCmd() *cobra.Command {
	var (
		id               string
		name             string
		permissions      []string
		documentSecurity bool
		disabled         bool
	)

	cmd := &cobra.Command{
		Use:   "create-collection",
		Short: "Create a collection and materialize its physical table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, newLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := schema.NewEngine(store, schema.DefaultOptions().WithLogger(newLogger()))
			if err != nil {
				return err
			}

			if id == "" {
				id = uuid.NewString()
			}
			if name == "" {
				name = id
			}

			coll, err := engine.CreateCollection(ctx, schema.CollectionRequest{
				ID:               id,
				Name:             name,
				Permissions:      permissions,
				DocumentSecurity: documentSecurity,
				Enabled:          !disabled,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created collection %s (sequence %d)\n",
				c.GreenString(coll.ID), coll.Sequence)

			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "collection id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	cmd.Flags().StringSliceVar(&permissions, "permission", nil, `permission entries, e.g. read("any")`)
	cmd.Flags().BoolVar(&documentSecurity, "document-security", false, "enable per-document permissions")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the collection disabled")

	return cmd
}
