package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brewhaha/internal/domain"
)

func newBrandsCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List brands, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var brands []domain.Brand
			if search == "" {
				brands = a.catalog.LoadBrands(cmd.Context())
			} else {
				var err error
				brands, err = a.catalog.SearchBrands(cmd.Context(), search)
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if len(brands) == 0 {
				fmt.Fprintln(out, "No brands found")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, b := range brands {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only brands whose name contains this text")
	return cmd
}

func newBrewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "brews <brandId>",
		Short: "List the brews of a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brand, err := a.catalog.Brand(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, brand.Name)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE")
			for _, b := range brand.Brews {
				fmt.Fprintf(tw, "%s\t%s\t$%s\n", b.ID, b.Name, b.Price.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}
