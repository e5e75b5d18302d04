package cli

import (
	"fmt"
	"log/slog"

	"github.com/graxinc/growbuf/internal/trace"
	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print capacities after inserting --steps values then trimming",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be >= 1, got %d", steps)
			}
			s := trace.Policy(steps)
			out, err := trace.Run(s, slog.Default())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			last := -1
			for _, st := range out {
				if st.Capacity == last {
					continue
				}
				last = st.Capacity
				if _, err := fmt.Fprintf(w, "%s after %d: size=%d cap=%d\n", st.Op, st.N, st.Size, st.Capacity); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 100, "number of values to insert")
	return cmd
}
