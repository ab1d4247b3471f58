package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/mdouchement/herkulexd"
	"github.com/mdouchement/herkulexd/cmd/herkulexd/record"
	"github.com/mdouchement/herkulexd/cmd/herkulexd/scan"
	"github.com/mdouchement/herkulexd/cmd/herkulexd/shell"
	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath string
	dummy bool
)

func main() {
	cmd := &cobra.Command{
		Use:     "herkulexd",
		Short:   "A daemon driving HerkuleX smart servos",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.PersistentFlags().StringVarP(&cpath, "config", "c", "/etc/herkulexd/herkulexd.yml", "Configfile path")
	cmd.PersistentFlags().BoolVarP(&dummy, "dummy", "", false, "Use a simulated HerkuleX bus")
	cmd.AddCommand(scan.Command(&cpath, &dummy))
	cmd.AddCommand(record.Command(&cpath, &dummy))
	cmd.AddCommand(shell.Command(&cpath, &dummy))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for herkulexd",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func daemon(_ *cobra.Command, args []string) error {
	cfg, err := herkulexd.Load(cpath)
	if err != nil {
		return err
	}

	log := herkulexd.NewLogger(os.Stdout, cfg.Debug)
	ctx := logger.WithLogger(context.Background(), log)

	log.Infof("herkulexd version %s", version)

	driver, err := herkulexd.Connect(cfg, dummy, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	log.Infof("HerkuleX bus port `%s` @ %d bauds", driver.Port(), cfg.BaudRate)

	err = herkulexd.Setup(cfg, driver)
	if err != nil {
		return err
	}

	for _, servo := range cfg.Servos {
		model, err := driver.Model(servo.ID)
		if err != nil {
			log.WithError(err).Warnf("servo%d(%s): not responding", servo.ID, servo.Label)
			continue
		}
		log.Infof("servo%d(%s): model %s", servo.ID, servo.Label, herkulex.ModelName(model))
	}

	poser, err := herkulexd.NewPoser(cfg)
	if err != nil {
		return err
	}

	var publisher herkulexd.Publisher
	if cfg.MQTT != nil {
		mqtt, err := herkulexd.NewMQTTPublisher(*cfg.MQTT, log)
		if err != nil {
			return err
		}
		publisher = mqtt
	}

	ctx, cancel := context.WithCancel(ctx)

	controller, err := herkulexd.New(cfg, driver, poser, publisher)
	if err != nil {
		cancel()
		return err
	}
	controller.Launch(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	<-ctx.Done()
	cancel()

	if err = driver.TorqueOff(herkulex.BroadcastID); err != nil {
		log.WithError(err).Error("Could not release the servos")
	}

	log.Info("Gracefully shutdown")
	return nil
}
