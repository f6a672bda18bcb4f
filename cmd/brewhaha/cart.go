package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brewhaha/internal/domain"
	"brewhaha/internal/pricing"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.carts.Get(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), items)
		},
	}

	add := &cobra.Command{
		Use:   "add <brandId> <brewId>",
		Short: "Add one unit of a brew to the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			brew, err := a.catalog.Brew(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			items, err := a.carts.Add(cmd.Context(), *brew)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), items)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <brewId>",
		Short: "Remove a brew from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.carts.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), items)
		},
	}

	set := &cobra.Command{
		Use:   "set <brewId> <quantity>",
		Short: "Change the quantity of a brew; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			items, err := a.carts.ChangeQuantity(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), items)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.carts.Clear(cmd.Context()); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), nil)
		},
	}

	cmd.AddCommand(add, remove, set, clearCmd)
	return cmd
}

func printCart(out io.Writer, items []domain.LineItem) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}
	fmt.Fprintf(out, "Your cart: %d items selected\n", pricing.ItemCount(items))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\tx %d\t$%s\n", item.ID, item.Name, item.Quantity, pricing.LineTotal(item))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: $%s\n", pricing.CalculateTotal(items))
	return nil
}
