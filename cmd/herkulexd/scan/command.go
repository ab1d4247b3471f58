package scan

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mdouchement/herkulexd"
	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/spf13/cobra"
)

func Command(cpath *string, dummy *bool) *cobra.Command {
	var first, last int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the bus for responding servos",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			if first < 0 || last > int(herkulex.MaxID) || first > last {
				return fmt.Errorf("invalid range [%d,%d]", first, last)
			}

			cfg, err := herkulexd.Load(*cpath)
			if err != nil {
				return err
			}

			log := herkulexd.NewLogger(os.Stderr, cfg.Debug)
			driver, err := herkulexd.Connect(cfg, *dummy, log)
			if err != nil {
				return err
			}
			defer driver.Close()

			err = herkulexd.Setup(cfg, driver)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			ids, err := driver.ScanRange(ctx, herkulex.ID(first), herkulex.ID(last))
			if err != nil {
				return err
			}

			labels := map[herkulex.ID]string{}
			for _, servo := range cfg.Servos {
				labels[servo.ID] = servo.Label
			}

			for _, id := range ids {
				model := "unknown"
				if m, err := driver.Model(id); err == nil {
					model = herkulex.ModelName(m)
				}

				status, err := driver.Status(id)
				if err != nil {
					fmt.Printf("%3d  %-12s  %-8s  %s\n", id, labels[id], model, err)
					continue
				}

				fmt.Printf("%3d  %-12s  %-8s  %s\n", id, labels[id], model, status)
			}
			fmt.Printf("%d servo(s) found\n", len(ids))

			return nil
		},
	}
	cmd.Flags().IntVarP(&first, "first", "", 0, "First scanned id")
	cmd.Flags().IntVarP(&last, "last", "", int(herkulex.MaxID), "Last scanned id")

	return cmd
}
