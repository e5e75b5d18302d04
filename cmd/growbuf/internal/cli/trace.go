package cli

import (
	"log/slog"

	"github.com/graxinc/growbuf/internal/trace"
	"github.com/spf13/cobra"
)

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <script.yaml>",
		Short: "Replay a YAML script of buffer operations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := trace.Load(args[0])
			if err != nil {
				return err
			}
			slog.Info("replaying script", "path", args[0], "ops", len(s.Ops),
				"min_capacity", s.MinCapacity, "max_capacity", s.MaxCapacity)

			steps, err := trace.Run(s, slog.Default())
			if err != nil {
				return err
			}
			return trace.Write(cmd.OutOrStdout(), steps)
		},
	}
}
