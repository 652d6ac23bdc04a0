package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Empty the clipboard",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(v)
			s, err := open(v)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			return nil
		},
	}

	addClientFlags(cmd)
	return cmd
}
