package main

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/rediwo/redi-datasource/datasource"
	"github.com/rediwo/redi-datasource/include"
	"github.com/rediwo/redi-datasource/metadata"
)

const version = "0.1.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	configPath string
	dbURI      string
	schemaPath string
}

// NewRootCommand builds the redi-list command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "redi-list",
		Short: "Query models through the list pipeline",
		Long: color.CyanString("redi-list") + ` runs list, count and item requests against a database
described by a YAML model schema, the same way an API layer would.

Examples:
  redi-list init --db=sqlite://./app.db --schema=./schema.yaml
  redi-list list Person --db=sqlite://./app.db --schema=./schema.yaml --search="steve steverson"
  redi-list list Case --filter Status=2,3 --order-by="OpenedAt desc" --page=2
  redi-list count Person --where='Company.Name == "Acme"'
  redi-list get Person 42
  redi-list schema --schema=./schema.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./redi-list.yaml)")
	root.PersistentFlags().StringVar(&opts.dbURI, "db", "", "database URI, overrides database.url")
	root.PersistentFlags().StringVar(&opts.schemaPath, "schema", "", "schema file, overrides schema.path")

	root.AddCommand(newListCommand(opts))
	root.AddCommand(newCountCommand(opts))
	root.AddCommand(newGetCommand(opts))
	root.AddCommand(newSchemaCommand(opts))
	root.AddCommand(newInitCommand(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redi-list v%s\n", version)
		},
	})
	return root
}

// requestFlags are the list request parameters shared by list and count.
type requestFlags struct {
	where, includes, orderBy, orderByDesc, search, fields string
	page, pageSize                                        int
	filters                                               []string
}

func (f *requestFlags) register(cmd *cobra.Command, paging bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.where, "where", "", "where expression")
	flags.StringVar(&f.search, "search", "", "free text search")
	flags.StringArrayVar(&f.filters, "filter", nil, "property filter Name=value (repeatable)")
	if !paging {
		return
	}
	flags.StringVar(&f.includes, "includes", "", `"none" to skip default includes`)
	flags.StringVar(&f.orderBy, "order-by", "", "comma separated sort fields")
	flags.StringVar(&f.orderByDesc, "order-by-desc", "", "comma separated descending sort fields")
	flags.StringVar(&f.fields, "fields", "", "comma separated fields to return")
	flags.IntVar(&f.page, "page", 0, "page number")
	flags.IntVar(&f.pageSize, "page-size", 0, "page size")
}

// request renders the flags as query parameters so they take the same
// route an HTTP request would.
func (f *requestFlags) request() (*datasource.ListRequest, error) {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("where", f.where)
	set("includes", f.includes)
	set("orderBy", f.orderBy)
	set("orderByDescending", f.orderByDesc)
	set("search", f.search)
	set("fields", f.fields)
	if f.page > 0 {
		params.Set("page", strconv.Itoa(f.page))
	}
	if f.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(f.pageSize))
	}
	for _, filter := range f.filters {
		name, value, ok := strings.Cut(filter, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected Name=value", filter)
		}
		params.Set("filter."+strings.TrimSpace(name), value)
	}
	return datasource.ParseListRequest(params), nil
}

func newListCommand(opts *options) *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "list <model>",
		Short: "List one page of a model's records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			env, err := setup(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			ds, err := env.dataSource(args[0])
			if err != nil {
				return err
			}
			result, tree, err := ds.GetList(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Result   *datasource.ListResult[map[string]any] `json:"result"`
				Includes *include.Tree                          `json:"includes"`
			}{result, tree})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newCountCommand(opts *options) *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "count <model>",
		Short: "Count a model's matching records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			env, err := setup(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			ds, err := env.dataSource(args[0])
			if err != nil {
				return err
			}
			n, err := ds.GetCount(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newGetCommand(opts *options) *cobra.Command {
	var includes string
	cmd := &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Show one record by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			ds, err := env.dataSource(args[0])
			if err != nil {
				return err
			}
			item, tree, err := ds.GetItem(cmd.Context(), args[1], &datasource.ListRequest{Includes: includes})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Item     map[string]any `json:"item"`
				Includes *include.Tree  `json:"includes"`
			}{item, tree})
		},
	}
	cmd.Flags().StringVar(&includes, "includes", "", `"none" to skip default includes`)
	return cmd
}

func newSchemaCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [model...]",
		Short: "Describe the models as the list pipeline sees them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			_, registry, err := loadRegistry(cfg.Schema.Path)
			if err != nil {
				return err
			}
			classes := registry.Classes()
			if len(args) > 0 {
				classes = make([]*metadata.Class, 0, len(args))
				for _, name := range args {
					c, err := registry.Class(name)
					if err != nil {
						return err
					}
					classes = append(classes, c)
				}
			}
			for _, c := range classes {
				describeClass(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newInitCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing tables for every model in the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.db.CreateTables(cmd.Context(), env.schemas); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d models\n", color.GreenString("✓"), len(env.schemas))
			return nil
		},
	}
}

func describeClass(w io.Writer, c *metadata.Class) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	title.Fprintf(w, "%s", c.Name)
	dim.Fprintf(w, " (%s)\n", c.Table)
	for _, p := range c.Properties {
		var notes []string
		if p.IsPrimaryKey {
			notes = append(notes, "key")
		}
		if p.Hidden {
			notes = append(notes, "hidden")
		}
		if p.Searchable {
			s := "search:" + p.SearchMethod.String()
			if p.SplitOnSpaces {
				s += ",split"
			}
			notes = append(notes, s)
		}
		kind := p.Kind.String()
		if p.IsPOCO() {
			kind = p.ObjectName
			if p.IsCollection {
				kind = "[]" + kind
			}
		}
		fmt.Fprintf(w, "  %-20s %-14s", p.Name, kind)
		dim.Fprintf(w, " %s\n", strings.Join(notes, " "))
	}
	if clause := c.DefaultOrderByClause(""); clause != "" {
		dim.Fprintf(w, "  order by %s\n", clause)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
