package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecipesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"menu"},
		Short:   "List the recipe table in matching order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipes, err := loadRecipes(cmd.Context(), g.cfg.RecipesFile, g.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range recipeLines(recipes) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
