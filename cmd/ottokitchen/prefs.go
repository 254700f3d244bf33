package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newPrefsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or edit saved preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every saved preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openPrefs(g.cfg.DBPath, g.log)
			if err != nil {
				return err
			}
			keys, err := store.Keys(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, k := range keys {
				v, err := store.GetString(cmd.Context(), k, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(g.cfg.DBPath, g.log)
			if err != nil {
				return err
			}
			ok, err := store.HasKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no preference %q", args[0])
			}
			v, err := store.GetString(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(g.cfg.DBPath, g.log)
			if err != nil {
				return err
			}
			key, raw := args[0], args[1]
			// Numbers are stored through the typed setters so typed
			// getters read them back.
			if n, err := strconv.Atoi(raw); err == nil {
				return store.SetInt(cmd.Context(), key, n)
			}
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return store.SetFloat(cmd.Context(), key, f)
			}
			return store.SetString(cmd.Context(), key, raw)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a preference",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefs(g.cfg.DBPath, g.log)
			if err != nil {
				return err
			}
			return store.Delete(cmd.Context(), args[0])
		},
	})

	return cmd
}
