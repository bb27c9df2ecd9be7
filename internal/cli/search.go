package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"calunga-catalog/internal/app"
	"calunga-catalog/internal/types"
)

type searchOptions struct {
	Distribution string
	Search       string
	License      string
	Classifier   string
	Ordering     string
	Page         int
	PageSize     int
	Strategy     string
}

func newSearchCommand() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the package catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Distribution, "distribution", "", "Distribution name (default: first browsable)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Name substring filter")
	cmd.Flags().StringVar(&opts.License, "license", "", "License filter")
	cmd.Flags().StringVar(&opts.Classifier, "classifier", "", "Classifier substring filter")
	cmd.Flags().StringVar(&opts.Ordering, "ordering", "", "Sort field, '-' prefix for descending")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 25, "Page size")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "progressive", "Loader strategy: progressive or name-first")
	return cmd
}

func runSearch(ctx context.Context, opts searchOptions) error {
	service, err := newCatalogService()
	if err != nil {
		return err
	}
	result, err := service.Search(ctx, app.SearchRequest{
		Distribution: opts.Distribution,
		Strategy:     types.LoaderStrategy(opts.Strategy),
		Params:       searchRequestParams(opts),
	})
	if err != nil {
		return err
	}

	fmt.Printf("distribution: %s\n", result.Distribution.Name)
	for _, item := range result.Items {
		fmt.Printf("%s\t%s\t%s\n", item.Name, item.Version, item.Summary)
	}
	fmt.Printf("%d of %d packages", len(result.Items), result.Total)
	if !result.Exhausted {
		fmt.Printf(" (upstream holds %d artifacts, more pages available)", result.UpstreamCount)
	}
	fmt.Println()
	return nil
}

func searchRequestParams(opts searchOptions) types.RequestParams {
	var filters []types.Filter
	if opts.Search != "" {
		filters = append(filters, types.Filter{Field: "name", Op: types.FilterOpIContains, Values: []string{opts.Search}})
	}
	if opts.License != "" {
		filters = append(filters, types.Filter{Field: "license", Op: types.FilterOpEqual, Values: []string{opts.License}})
	}
	if opts.Classifier != "" {
		filters = append(filters, types.Filter{Field: "classifiers", Op: types.FilterOpContains, Values: []string{opts.Classifier}})
	}

	var sortBy *types.Sort
	if opts.Ordering != "" {
		field := opts.Ordering
		direction := types.SortAscending
		if field[0] == '-' {
			direction = types.SortDescending
			field = field[1:]
		}
		sortBy = &types.Sort{Field: field, Direction: direction}
	}

	return types.RequestParams{
		Filters: filters,
		Sort:    sortBy,
		Page:    types.Page{Number: opts.Page, PerPage: opts.PageSize},
	}
}
