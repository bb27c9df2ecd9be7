package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"calunga-catalog/internal/app"
)

type showOptions struct {
	Distribution string
}

func newShowCommand() *cobra.Command {
	opts := showOptions{}
	cmd := &cobra.Command{
		Use:   "show <package>",
		Short: "Show package detail with attestations and trust score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Distribution, "distribution", "", "Distribution name (default: first browsable)")
	return cmd
}

func runShow(ctx context.Context, opts showOptions, name string) error {
	service, err := newCatalogService()
	if err != nil {
		return err
	}
	result, err := service.Show(ctx, app.ShowRequest{
		Distribution: opts.Distribution,
		Name:         name,
	})
	if err != nil {
		return err
	}

	pkg := result.Package
	fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	if pkg.Summary != "" {
		fmt.Println(pkg.Summary)
	}
	if pkg.License != "" {
		fmt.Printf("license: %s\n", pkg.License)
	}
	if pkg.Author != "" {
		fmt.Printf("author: %s\n", pkg.Author)
	}
	fmt.Printf("versions: %s\n", strings.Join(pkg.Versions, ", "))

	if pkg.Trust != nil {
		fmt.Printf("trust: %s (score %d, %d verified attestations, max SLSA %d)\n",
			pkg.Trust.Level, pkg.Trust.Score, pkg.Trust.Verified, pkg.Trust.MaxSLSALevel)
	}
	for _, att := range pkg.Attestations {
		status := "unverified"
		if att.Verified {
			status = "verified"
		}
		fmt.Printf("- attestation %s slsa=%d %s\n", status, att.SLSALevel, att.VerifierID)
	}

	if len(result.PublishedVersions) > 0 {
		fmt.Printf("published on index: %s\n", strings.Join(result.PublishedVersions, ", "))
	}
	return nil
}
