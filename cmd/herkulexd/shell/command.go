package shell

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/mdouchement/herkulexd"
	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/spf13/cobra"
)

const servoKey = "$servo"

func Command(cpath *string, dummy *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [command [args...]]",
		Short: "Interactive shell sending raw HerkuleX commands",
		Long:  "Interactive shell sending raw HerkuleX commands, the given command is evaluated without starting the shell",
		RunE: func(_ *cobra.Command, args []string) error {
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

			sh := New(herkulex.NewCompat(driver))
			if len(args) > 0 {
				return sh.Process(args...)
			}

			sh.Printf("HerkuleX bus on %s, type `help` to list the commands\n", driver.Port())
			sh.Run()
			return nil
		},
	}
}

// New returns a shell driving the servos through the given facade.
func New(servo *herkulex.Compat) *ishell.Shell {
	sh := ishell.New()
	sh.Set(servoKey, servo)
	sh.SetPrompt("herkulex > ")
	for _, cmd := range commands {
		sh.AddCmd(cmd)
	}
	return sh
}

func servoFrom(c *ishell.Context) *herkulex.Compat {
	return c.Get(servoKey).(*herkulex.Compat)
}

// withArgs wraps command func requiring at least n arguments.
func withArgs(n int, fn func(c *ishell.Context, s *herkulex.Compat) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) < n {
			c.Err(fmt.Errorf("%d argument(s) expected, see `help`", n))
			return
		}

		if err := fn(c, servoFrom(c)); err != nil {
			c.Err(err)
		}
	}
}

func parseID(s string) (herkulex.ID, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("id %s: %w", strconv.Quote(s), err)
	}
	return herkulex.ID(v), nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", strconv.Quote(s), err)
	}
	return byte(v), nil
}

// parseMove parses `ID VALUE [PLAYTIME_MS] [COLORS...]`.
func parseMove(args []string) (id herkulex.ID, value float64, ms int, led herkulex.LED, err error) {
	id, err = parseID(args[0])
	if err != nil {
		return
	}

	value, err = strconv.ParseFloat(args[1], 64)
	if err != nil {
		return
	}

	if len(args) > 2 {
		ms, err = strconv.Atoi(args[2])
		if err != nil {
			return
		}
	}

	if len(args) > 3 {
		led, err = herkulex.ParseLED(args[3:]...)
	}
	return
}

// parseBatch parses `ID VALUE [COLORS...]`.
func parseBatch(args []string) (id herkulex.ID, value float64, led herkulex.LED, err error) {
	id, err = parseID(args[0])
	if err != nil {
		return
	}

	value, err = strconv.ParseFloat(args[1], 64)
	if err != nil {
		return
	}

	if len(args) > 2 {
		led, err = herkulex.ParseLED(args[2:]...)
	}
	return
}
