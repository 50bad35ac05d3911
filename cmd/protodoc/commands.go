// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/protodoc/config"
	"github.com/bufbuild/protodoc/coverage"
	"github.com/bufbuild/protodoc/locate"
	"github.com/bufbuild/protodoc/mcpserver"
	"github.com/bufbuild/protodoc/render"
	"github.com/bufbuild/protodoc/route"
	"github.com/bufbuild/protodoc/search"
	"github.com/bufbuild/protodoc/server"
	"github.com/bufbuild/protodoc/snapshot"
)

func exactArgsWithMsg(n int, msg string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("accepts %d arg(s), received %d: %s", n, len(args), msg)
		}
		return nil
	}
}

func getTreeCmd(c *rootCommand) *cobra.Command {
	var opts render.TreeOptions
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "print the entity tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			opts.Color = c.color()
			return render.Tree(c.gs.stdout, m.Root(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Search, "search", "", "only show entities on a path matching this dotted `term`")
	cmd.Flags().IntVar(&opts.MaxDepth, "depth", 0, "levels to show below the root, 0 for all")
	return cmd
}

func getShowCmd(c *rootCommand) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "describe one entity",
		Long: `Describe one entity.

The path is the entity's full name without the leading dot, or (root).`,
		Args: exactArgsWithMsg(1, "the entity path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			e, ok := route.Resolve(m, args[0])
			if !ok {
				return fmt.Errorf("no entity at %q", args[0])
			}
			switch format {
			case "yaml":
				return render.YAML(c.gs.stdout, e)
			case "json":
				enc := json.NewEncoder(c.gs.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(render.View(e))
			default:
				return fmt.Errorf("unsupported format %q, want yaml or json", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output `format`: yaml or json")
	return cmd
}

func getSearchCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "find entities by name",
		Long: `Find entities by name.

Each dot-separated part of the term must be found, in order, in the names of
successive entities on a path from the root.`,
		Args: exactArgsWithMsg(1, "the search term"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			var b strings.Builder
			for _, hit := range search.Hits(m.Root(), args[0]) {
				fmt.Fprintf(&b, "%s %s\n", route.FromFullName(hit.FullName()), hit.Kind())
			}
			_, err = fmt.Fprint(c.gs.stdout, b.String())
			return err
		},
	}
}

func getCoverageCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "report how much of the schema is documented",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			return render.Coverage(c.gs.stdout, coverage.Compute(m), c.color())
		},
	}
}

// parsePosition parses file:line:column.
func parsePosition(s string) (file string, line, column int, err error) {
	i := strings.LastIndexByte(s, ':')
	j := strings.LastIndexByte(s[:max(i, 0)], ':')
	if i < 0 || j < 0 {
		return "", 0, 0, fmt.Errorf("invalid position %q, want file:line:column", s)
	}
	file = s[:j]
	if line, err = strconv.Atoi(s[j+1 : i]); err != nil {
		return "", 0, 0, fmt.Errorf("invalid line in %q: %w", s, err)
	}
	if column, err = strconv.Atoi(s[i+1:]); err != nil {
		return "", 0, 0, fmt.Errorf("invalid column in %q: %w", s, err)
	}
	if file == "" {
		return "", 0, 0, fmt.Errorf("invalid position %q, want file:line:column", s)
	}
	return file, line, column, nil
}

func getLocateCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <file:line:column>",
		Short: "show the entities declared at a source position",
		Long: `Show the entities and members whose source spans contain a position,
innermost first. Lines and columns are zero-based.`,
		Args: exactArgsWithMsg(1, "the position"),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, column, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			m, err := c.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			var b strings.Builder
			for _, node := range locate.New(m).At(file, line, column) {
				kind := node.Entity.Kind().String()
				if node.Member != nil {
					kind = node.Member.Kind.String()
				}
				info := node.SourceInfo()
				fmt.Fprintf(&b, "%s %s %s:%d:%d-%d:%d\n",
					route.FromFullName(node.FullName()), kind,
					info.FileName, info.StartLine, info.StartColumn, info.EndLine, info.EndColumn)
			}
			_, err = fmt.Fprint(c.gs.stdout, b.String())
			return err
		},
	}
}

func getServeCmd(c *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		Long: `Serve the HTTP API.

Descriptors are loaded in the background and reloaded every reload interval.
Until the first load succeeds, the API answers 503.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := &snapshot.Store{Logger: c.gs.logger}
			srv := server.New(store, c.gs.logger).HTTPServer(c.conf.Listen.String)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return ignoreCanceled(store.Watch(ctx, c.conf.Reload(), c.load()))
			})
			g.Go(func() error {
				c.gs.logger.WithField("address", srv.Addr).Info("Serving the API")
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().AddFlagSet(config.ServeFlags())
	return cmd
}

func getMCPCmd(c *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "serve MCP tools over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := &snapshot.Store{Logger: c.gs.logger}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return ignoreCanceled(store.Watch(ctx, c.conf.Reload(), c.load()))
			})
			g.Go(func() error {
				defer cancel()
				return ignoreCanceled(mcpserver.New(store, version, c.gs.logger).Serve(ctx, c.gs.stdin, c.gs.stdout))
			})
			return g.Wait()
		},
	}
	cmd.Flags().AddFlagSet(config.ServeFlags())
	return cmd
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func getVersionCmd(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(c.gs.stdout, "protodoc %s\n", version)
			return err
		},
	}
}
