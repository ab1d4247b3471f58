package shell

import (
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/mdouchement/herkulexd/herkulex"
)

var commands = []*ishell.Cmd{
	{
		Name: "init",
		Help: "wake up every servo",
		Func: withArgs(0, func(c *ishell.Context, s *herkulex.Compat) error {
			s.Initialize()
			return nil
		}),
	},
	{
		Name: "ack",
		Help: "POLICY (none, read, always)",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			policy, err := herkulex.ParseAckPolicy(c.Args[0])
			if err != nil {
				return err
			}
			s.SetAckPolicy(policy)
			return nil
		}),
	},
	{
		Name: "clear",
		Help: "ID",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}
			s.ClearError(id)
			return nil
		}),
	},
	{
		Name: "torque",
		Help: "ID [on|off]",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}

			if len(c.Args) > 1 && c.Args[1] == "off" {
				s.TorqueOff(id)
				return nil
			}
			s.TorqueOn(id)
			return nil
		}),
	},
	{
		Name: "led",
		Help: "ID [COLORS...]",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}
			led, err := herkulex.ParseLED(c.Args[1:]...)
			if err != nil {
				return err
			}
			s.SetLED(id, led)
			return nil
		}),
	},
	{
		Name:    "move",
		Aliases: []string{"mv"},
		Help:    "ID POSITION [PLAYTIME_MS] [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, position, ms, led, err := parseMove(c.Args)
			if err != nil {
				return err
			}
			s.MoveTo(id, int(position), ms, led)
			return nil
		}),
	},
	{
		Name: "angle",
		Help: "ID DEGREES [PLAYTIME_MS] [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, angle, ms, led, err := parseMove(c.Args)
			if err != nil {
				return err
			}
			s.MoveToAngle(id, angle, ms, led)
			return nil
		}),
	},
	{
		Name: "speed",
		Help: "ID SPEED [PLAYTIME_MS] [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, speed, ms, led, err := parseMove(c.Args)
			if err != nil {
				return err
			}
			s.SetSpeed(id, int(speed), ms, led)
			return nil
		}),
	},
	{
		Name:    "get",
		Aliases: []string{"g"},
		Help:    "ID, print position, angle, speed and status",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}

			c.Printf("position: %d\n", s.GetPosition(id))
			c.Printf("angle:    %.2f°\n", s.GetAngle(id))
			c.Printf("speed:    %d\n", s.GetSpeed(id))
			c.Printf("status:   %s\n", s.GetStatus(id))
			return nil
		}),
	},
	{
		Name: "model",
		Help: "ID",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}

			model := s.GetModel(id)
			if model < 0 {
				c.Println("unknown")
				return nil
			}
			c.Println(herkulex.ModelName(uint8(model)))
			return nil
		}),
	},
	{
		Name: "change-id",
		Help: "OLD_ID NEW_ID",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			oldID, err := parseID(c.Args[0])
			if err != nil {
				return err
			}
			newID, err := parseID(c.Args[1])
			if err != nil {
				return err
			}

			c.Println(s.ChangeID(oldID, newID))
			return nil
		}),
	},
	{
		Name: "reboot",
		Help: "ID",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			id, err := parseID(c.Args[0])
			if err != nil {
				return err
			}
			s.Reboot(id)
			return nil
		}),
	},
	{
		Name: "ram",
		Help: "ID ADDRESS VALUE",
		Func: withArgs(3, func(c *ishell.Context, s *herkulex.Compat) error {
			id, address, value, err := parseRegister(c.Args)
			if err != nil {
				return err
			}
			s.WriteRAMRegister(id, address, value)
			return nil
		}),
	},
	{
		Name: "eep",
		Help: "ID ADDRESS VALUE",
		Func: withArgs(3, func(c *ishell.Context, s *herkulex.Compat) error {
			id, address, value, err := parseRegister(c.Args)
			if err != nil {
				return err
			}
			s.WriteEEPRegister(id, address, value)
			return nil
		}),
	},
	{
		Name: "scan",
		Help: "list the responding servos",
		Func: withArgs(0, func(c *ishell.Context, s *herkulex.Compat) error {
			ids := s.ScanIDs()
			for _, id := range ids {
				c.Println(id)
			}
			c.Printf("%d servo(s) found\n", len(ids))
			return nil
		}),
	},
	{
		Name:    "batch.move",
		Aliases: []string{"bm"},
		Help:    "ID POSITION [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, position, led, err := parseBatch(c.Args)
			if err != nil {
				return err
			}
			s.AddBatchMove(id, int(position), led)
			c.Printf("%d entries\n", s.BatchLen())
			return nil
		}),
	},
	{
		Name:    "batch.angle",
		Aliases: []string{"ba"},
		Help:    "ID DEGREES [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, angle, led, err := parseBatch(c.Args)
			if err != nil {
				return err
			}
			s.AddBatchAngle(id, angle, led)
			c.Printf("%d entries\n", s.BatchLen())
			return nil
		}),
	},
	{
		Name:    "batch.speed",
		Aliases: []string{"bs"},
		Help:    "ID SPEED [COLORS...]",
		Func: withArgs(2, func(c *ishell.Context, s *herkulex.Compat) error {
			id, speed, led, err := parseBatch(c.Args)
			if err != nil {
				return err
			}
			s.AddBatchSpeed(id, int(speed), led)
			c.Printf("%d entries\n", s.BatchLen())
			return nil
		}),
	},
	{
		Name:    "batch.flush",
		Aliases: []string{"bf"},
		Help:    "PLAYTIME_MS",
		Func: withArgs(1, func(c *ishell.Context, s *herkulex.Compat) error {
			ms, err := strconv.Atoi(c.Args[0])
			if err != nil {
				return err
			}
			s.FlushBatch(ms)
			return nil
		}),
	},
}

func parseRegister(args []string) (id herkulex.ID, address herkulex.Register, value byte, err error) {
	id, err = parseID(args[0])
	if err != nil {
		return
	}

	v, err := parseByte(args[1])
	if err != nil {
		return
	}
	address = herkulex.Register(v)

	value, err = parseByte(args[2])
	return
}
