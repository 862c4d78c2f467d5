package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/pages"
	"github.com/katyella/kconsole/internal/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type getOptions struct {
	namespace     string
	allNamespaces bool
	cluster       string
	allClusters   bool
	selector      string
	output        string
	sortBy        string
	filter        string
	reveal        bool
}

// listNamespace is the namespace to list: none for cluster scoped types and
// with -A, the default namespace when unset
func (o getOptions) listNamespace(rt resources.ResourceType) string {
	switch {
	case !rt.Namespaced, o.allNamespaces:
		return ""
	case o.namespace != "":
		return o.namespace
	}
	return constants.DefaultNamespace
}

func newGetCmd(c *cli) *cobra.Command {
	var o getOptions
	cmd := &cobra.Command{
		Use:   "get TYPE [NAME]",
		Short: "Display one or many resources",
		Long: `Display one or many resources from one cluster or, with --all-clusters,
from every cluster of the data source.

Output formats:
  -o table    - Human-readable table (default)
  -o wide     - Table with labels
  -o json     - JSON format
  -o yaml     - YAML format
  -o name     - Resource names only`,
		Example: `  # List pods in the default namespace of the default cluster
  kconsole get pods

  # List deployments in every namespace of every cluster
  kconsole get deploy -A --all-clusters

  # Filter with a CEL expression and sort by age, newest first
  kconsole get pods -A --filter '?ns.startsWith("team-")' --sort=-age

  # Show one secret with its values
  kconsole get secret db-credentials -n shop -o yaml --reveal`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(o.output); err != nil {
				return err
			}
			rt, err := lookupType(args[0])
			if err != nil {
				return err
			}
			backend, err := c.backend()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd.Context())
			defer cancel()

			if len(args) == 2 {
				return runGetOne(ctx, cmd.OutOrStdout(), backend, rt, args[1], o)
			}
			return runGetList(ctx, cmd.OutOrStdout(), backend, c.cfg.Concurrency, rt, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.namespace, "namespace", "n", "", "Namespace to list (defaults to \"default\")")
	f.BoolVarP(&o.allNamespaces, "all-namespaces", "A", false, "List across all namespaces")
	f.StringVar(&o.cluster, "cluster", "", "Cluster to read (defaults to the default cluster)")
	f.BoolVar(&o.allClusters, "all-clusters", false, "List across all clusters")
	f.StringVarP(&o.selector, "selector", "l", "", "Label selector")
	f.StringVarP(&o.output, "output", "o", outputTable, "Output format: table, wide, yaml, json or name")
	f.StringVar(&o.sortBy, "sort", "", "Column to sort by, prefix with - for descending")
	f.StringVar(&o.filter, "filter", "", "Row filter: text, =name, /regex/, l:selector or ?cel")
	f.BoolVar(&o.reveal, "reveal", false, "Show secret values in yaml and json output")
	return cmd
}

func runGetOne(ctx context.Context, w io.Writer, backend resources.Backend, rt resources.ResourceType, name string, o getOptions) error {
	cluster, err := resolveCluster(ctx, backend, o.cluster)
	if err != nil {
		return err
	}
	obj, err := backend.Get(ctx, resources.Ref{Cluster: cluster, Type: rt, Namespace: o.listNamespace(rt), Name: name})
	if err != nil {
		return err
	}
	row := pages.For(rt).Row(cluster, obj, time.Now())
	return printRows(w, rt, []table.Row{row}, o)
}

func runGetList(ctx context.Context, w io.Writer, backend resources.Backend, concurrency int, rt resources.ResourceType, o getOptions) error {
	opts := resources.ListOptions{Namespace: o.listNamespace(rt), LabelSelector: o.selector}
	page := pages.For(rt)
	now := time.Now()

	var rows []table.Row
	if o.allClusters {
		agg := multicluster.NewAggregator(backend, concurrency)
		clusters, err := agg.Clusters(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(clusters))
		for _, cl := range clusters {
			names = append(names, cl.Name)
		}
		result, err := agg.List(ctx, names, rt, opts)
		if err != nil {
			return err
		}
		for _, name := range result.Failed() {
			log.Warn().Err(result.Errors[name]).Str("cluster", name).Msg("Cluster skipped")
		}
		for i := range result.Items {
			rows = append(rows, page.Row(result.Items[i].Cluster, &result.Items[i].Object, now))
		}
	} else {
		cluster, err := resolveCluster(ctx, backend, o.cluster)
		if err != nil {
			return err
		}
		list, err := backend.List(ctx, cluster, rt, opts)
		if err != nil {
			return err
		}
		rows = page.Rows(cluster, list.Items, now)
	}

	rows, err := filterRows(rows, o.filter)
	if err != nil {
		return err
	}
	if err := sortRows(rows, page.TableColumns(true, true), o.sortBy); err != nil {
		return err
	}
	if len(rows) == 0 && (o.output == outputTable || o.output == outputWide) {
		fmt.Fprintf(w, "No %s found.\n", rt.Name)
		return nil
	}
	return printRows(w, rt, rows, o)
}

func filterRows(rows []table.Row, query string) ([]table.Row, error) {
	f, err := table.ParseFilter(query)
	if err != nil {
		return nil, err
	}
	return f.Apply(rows)
}

// sortRows orders by the column named in spec, "-" prefixed for descending.
// An empty spec sorts by cluster, namespace and name.
func sortRows(rows []table.Row, columns []table.Column, spec string) error {
	if spec == "" {
		for _, key := range []string{table.KeyName, table.KeyNamespace, table.KeyCluster} {
			table.SortRows(rows, key, table.Ascending)
		}
		return nil
	}
	dir := table.Ascending
	if key, ok := strings.CutPrefix(spec, "-"); ok {
		spec, dir = key, table.Descending
	}
	for _, col := range columns {
		if strings.EqualFold(col.Key, spec) || strings.EqualFold(col.Title, spec) {
			table.SortRows(rows, col.Key, dir)
			return nil
		}
	}
	return fmt.Errorf("unknown sort column %q", spec)
}

func printRows(w io.Writer, rt resources.ResourceType, rows []table.Row, o getOptions) error {
	switch o.output {
	case outputName:
		for _, r := range rows {
			fmt.Fprintf(w, "%s/%s\n", rt.Singular, r.Name())
		}
		return nil
	case outputYAML, outputJSON:
		objs := make([]any, 0, len(rows))
		for _, r := range rows {
			obj := r.Object
			if !o.reveal {
				obj = pages.MaskSecret(obj)
			}
			objs = append(objs, obj.Object)
		}
		if len(objs) == 1 {
			return printData(w, o.output, objs[0])
		}
		return printData(w, o.output, map[string]any{"apiVersion": "v1", "kind": "List", "items": objs})
	}

	columns := pages.For(rt).TableColumns(rt.Namespaced && o.allNamespaces, o.allClusters)
	if o.output == outputWide {
		columns = append(columns, table.Column{Key: "labels", Title: "LABELS"})
		for i := range rows {
			rows[i].Cells["labels"] = table.Text(formatLabels(rows[i].Object))
		}
	}
	return printTable(w, columns, rows)
}

func formatLabels(obj *unstructured.Unstructured) string {
	if obj == nil || len(obj.GetLabels()) == 0 {
		return "<none>"
	}
	labels := obj.GetLabels()
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
