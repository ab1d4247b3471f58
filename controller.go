package herkulexd

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/mdouchement/logger"
)

type Controller struct {
	bus       Bus
	poser     *Poser
	publisher Publisher
	events    chan event
	listener  net.Listener
	polling   time.Duration
	servos    []Servo
	active    map[herkulex.ID]Snapshot
}

func New(cfg Config, bus Bus, poser *Poser, publisher Publisher) (*Controller, error) {
	c := &Controller{
		bus:       bus,
		poser:     poser,
		publisher: publisher,
		events:    make(chan event, 10),
		polling:   cfg.PollInterval.Duration,
		active:    make(map[herkulex.ID]Snapshot),
	}

	for _, servo := range cfg.Servos {
		c.servos = append(c.servos, *servo)
	}
	slices.SortFunc(c.servos, func(a, b Servo) int {
		return cmp.Compare(a.ID, b.ID)
	})

	err := os.MkdirAll(filepath.Dir(cfg.Socket), 0o755)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	if _, err := os.Stat(cfg.Socket); err == nil {
		fmt.Printf("Removing existing %s\n", cfg.Socket)
		os.Remove(cfg.Socket)
	}
	c.listener, err = net.Listen("unix", cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	return c, nil
}

func (c *Controller) Launch(ctx context.Context) {
	log := logger.LogWith(ctx)

	go c.eventLoop(ctx)
	go c.poll(ctx, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /monitor", c.monitor(log))
	mux.HandleFunc("GET /poses", c.poses())
	mux.HandleFunc("POST /poses/{name}", c.play(log))
	mux.HandleFunc("GET /scan", c.scan(log))

	go func() {
		for {
			log.Info("Starting HTTP server on", c.listener.Addr().String())
			err := http.Serve(c.listener, mux)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.WithError(err).Error("Could not serve HTTP")
			}
			time.Sleep(2 * time.Second)
		}
	}()

	go func() {
		<-ctx.Done()

		if err := c.listener.Close(); err != nil {
			log.WithError(err).Error("Could not close socket listener")
		}
		if err := os.Remove(c.listener.Addr().String()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Errorf("Could not remove socket %s", c.listener.Addr().String())
		}

		if c.publisher != nil {
			if err := c.publisher.Close(); err != nil {
				log.WithError(err).Error("Could not close publisher")
			}
		}
	}()
}

// Snapshot polls the servo once.
func (c *Controller) Snapshot(servo Servo) Snapshot {
	s := Snapshot{
		ID:       servo.ID,
		Label:    servo.Label,
		PolledAt: time.Now(),
	}

	var err error
	s.Position, err = c.bus.Position(servo.ID)
	if err != nil {
		s.StatusText = err.Error()
		return s
	}
	s.Online = true
	s.Angle = herkulex.PositionToAngle(s.Position)

	// An offline servo has been detected above, failures below are transient.
	s.Speed, _ = c.bus.Speed(servo.ID)
	s.Status, _ = c.bus.Status(servo.ID)
	s.StatusText = s.Status.String()

	return s
}

func (c *Controller) poll(ctx context.Context, log logger.Logger) {
	ticker := time.NewTicker(c.polling)
	defer ticker.Stop()

	for {
		for _, servo := range c.servos {
			s := c.Snapshot(servo)

			select {
			case c.events <- event{name: eventUpdateSnapshot, snapshot: s}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Debug("Polling stopped")
			return
		}
	}
}

func (c *Controller) eventLoop(ctx context.Context) {
	log := logger.LogWith(ctx)
	watchers := map[int64]chan<- []byte{}

	for {
		var e event
		select {
		case e = <-c.events:
		case <-ctx.Done():
			for id, watcher := range watchers {
				close(watcher)
				delete(watchers, id)
			}
			return
		}

		switch e.name {
		case eventUpdateSnapshot:
			s := e.snapshot
			if prev, ok := c.active[s.ID]; !ok || s.Changed(prev) {
				// Only log notable changes to avoid flooding the logs.
				if s.Online {
					log.Infof("servo%d(%s): %d (%.1f°) - speed %d - %s", s.ID, s.Label, s.Position, s.Angle, s.Speed, s.StatusText)
				} else {
					log.Warnf("servo%d(%s): offline: %s", s.ID, s.Label, s.StatusText)
				}
			}
			c.active[s.ID] = s

			if c.publisher != nil {
				if err := c.publisher.Publish(s); err != nil {
					log.WithError(err).Errorf("Could not publish servo%d", s.ID)
				}
			}

			c.refreshWatchers(log, watchers)
		case eventRefreshWatchers:
			c.refreshWatchers(log, watchers)
		case eventWatch:
			watchers[e.monitorID] = e.monitor
			c.refreshWatchers(log, watchers)
		case eventUnwatch:
			if watcher, ok := watchers[e.monitorID]; ok {
				close(watcher)
				delete(watchers, e.monitorID)
			}
		}
	}
}

func (c *Controller) refreshWatchers(log logger.Logger, watchers map[int64]chan<- []byte) {
	if len(watchers) == 0 {
		return
	}

	snapshots := slices.SortedFunc(maps.Values(c.active), func(a, b Snapshot) int {
		return cmp.Compare(a.ID, b.ID)
	})
	payload, err := json.Marshal(snapshots)
	if err != nil {
		log.WithError(err).Error("Could not serialize snapshots") // Should never happen
		return
	}

	for _, watcher := range watchers {
		select {
		case watcher <- payload:
		default:
			// Slow client, it gets the next refresh.
		}
	}
}

func (c *Controller) monitor(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Client connected")

		// Set http headers required for SSE.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		disconnected := r.Context().Done()

		id := genID()
		ch := make(chan []byte, 20)
		c.events <- event{name: eventWatch, monitorID: id, monitor: ch}

		rc := http.NewResponseController(w)
		for {
			select {
			case <-disconnected:
				log.Info("Client disconnected")
				c.events <- event{name: eventUnwatch, monitorID: id}
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}

				_, err := w.Write(append(payload, '\n', '\n'))
				if err != nil {
					log.WithError(err).Error("Could not write monitor SSE payload")
					c.events <- event{name: eventUnwatch, monitorID: id}
					return
				}

				err = rc.Flush()
				if err != nil {
					log.WithError(err).Error("Could not flush monitor SSE payload")
					c.events <- event{name: eventUnwatch, monitorID: id}
					return
				}
			}
		}
	}
}

func (c *Controller) poses() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c.poser.Names())
	}
}

func (c *Controller) play(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		err := c.poser.Play(c.bus, name)
		if errors.Is(err, ErrNotFoundPose) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			log.WithError(err).Errorf("Could not play pose %s", name)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Infof("Playing pose %s over %s", name, c.poser.PlayTime())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (c *Controller) scan(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := c.bus.ScanIDs(r.Context())
		if err != nil {
			log.WithError(err).Error("Could not scan servos")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// []herkulex.ID would be encoded as a base64 string.
		payload := make([]int, 0, len(ids))
		for _, id := range ids {
			payload = append(payload, int(id))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}
