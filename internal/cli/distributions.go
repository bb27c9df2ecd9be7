package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDistributionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "distributions",
		Short: "List browsable distributions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDistributions(cmd.Context())
		},
	}
}

func runDistributions(ctx context.Context) error {
	service, err := newCatalogService()
	if err != nil {
		return err
	}
	result, err := service.Distributions(ctx)
	if err != nil {
		return err
	}
	for _, dist := range result.Distributions {
		fmt.Printf("%s\t%s\t%s\n", dist.Name, dist.BasePath, dist.BaseURL)
	}
	return nil
}
