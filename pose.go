package herkulexd

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
)

var ErrNotFoundPose = errors.New("pose not found")

// A Poser turns the configured poses into synchronized S_JOG batches.
type Poser struct {
	playTime time.Duration
	index    map[string][]target
}

func NewPoser(cfg Config) (*Poser, error) {
	p := &Poser{
		playTime: cfg.PlayTime.Duration,
		index:    make(map[string][]target, len(cfg.Poses)),
	}

	for name, targets := range cfg.Poses {
		for label, angle := range targets {
			servo, ok := cfg.Servos[label]
			if !ok {
				return nil, fmt.Errorf("pose %s: %s: unknown servo", name, label)
			}

			p.index[name] = append(p.index[name], target{
				id:    servo.ID,
				label: label,
				angle: angle,
				led:   servo.LED,
			})
		}

		// Same frame for the same pose whatever the map order is.
		slices.SortFunc(p.index[name], func(a, b target) int {
			return cmp.Compare(a.id, b.id)
		})
	}

	return p, nil
}

func (p *Poser) Names() []string {
	return slices.Sorted(maps.Keys(p.index))
}

func (p *Poser) PlayTime() time.Duration {
	return p.playTime
}

// Batch returns a batch holding every servo target of the pose.
func (p *Poser) Batch(name string) (*herkulex.Batch, error) {
	targets, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFoundPose)
	}

	b, err := herkulex.NewBatch(herkulex.MaxBatchEntries)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		if err = b.AddAngle(t.id, t.angle, t.led); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", name, t.label, err)
		}
	}

	return b, nil
}

// Play sends the pose to the bus.
func (p *Poser) Play(bus Bus, name string) error {
	b, err := p.Batch(name)
	if err != nil {
		return err
	}

	return bus.FlushBatch(b, p.playTime)
}
