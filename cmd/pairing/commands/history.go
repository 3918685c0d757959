// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		dir   string
		batch string
	)
	open := func() (*store.Badger, error) {
		if dir == "" {
			dir = a.cfg.StoreDir
		}
		if dir == "" {
			return nil, errNoStore
		}
		return store.OpenBadger(store.BadgerOptions{Dir: dir, Logger: a.logger})
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored match records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			var recs []store.Record
			if batch != "" {
				recs, err = db.Batch(cmd.Context(), batch)
			} else {
				recs, err = db.Records(cmd.Context())
			}
			if err != nil {
				return err
			}
			renderRecords(cmd.OutOrStdout(), recs)

			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&dir, "store", "", "badger directory (defaults to store_dir)")
	cmd.Flags().StringVar(&batch, "batch", "", "only show this batch")

	cmd.AddCommand(&cobra.Command{
		Use:   "status <batch> <a> <b> <pending|accepted|rejected>",
		Short: "Set the status of a stored match",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			s := store.Status(args[3])
			if err := db.SetStatus(cmd.Context(), args[0], person.ID(args[1]), person.ID(args[2]), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s-%s %s\n", args[0], args[1], args[2], s)

			return nil
		},
	})

	return cmd
}
