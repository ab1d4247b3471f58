package record

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/go-analyze/charts"
	"github.com/mattn/go-sixel"
	"github.com/mdouchement/herkulexd"
	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/spf13/cobra"
)

func Command(cpath *string, dummy *bool) *cobra.Command {
	var pose string
	var duration, interval time.Duration
	var resolution int

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record and chart the angle of each servo, optionally while playing a pose",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			if interval <= 0 || duration < interval {
				return fmt.Errorf("invalid sampling: %s every %s", duration, interval)
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

			servos := make([]herkulexd.Servo, 0, len(cfg.Servos))
			for _, servo := range cfg.Servos {
				servos = append(servos, *servo)
			}
			slices.SortFunc(servos, func(a, b herkulexd.Servo) int {
				return cmp.Compare(a.ID, b.ID)
			})

			if pose != "" {
				poser, err := herkulexd.NewPoser(cfg)
				if err != nil {
					return err
				}

				err = poser.Play(driver, pose)
				if err != nil {
					return err
				}
			}

			//
			// Sample angles
			//

			series := make([]charts.LineSeries, len(servos))
			for i, servo := range servos {
				series[i].Name = fmt.Sprintf("servo%d: %s", servo.ID, servo.Label)
			}

			var labels []string
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			start := time.Now()
			for elapsed := time.Duration(0); elapsed <= duration; elapsed = time.Since(start) {
				labels = append(labels, strconv.FormatInt(elapsed.Milliseconds(), 10))

				for i, servo := range servos {
					angle, err := driver.Angle(servo.ID)
					if err != nil {
						log.WithError(err).Debugf("servo%d: no sample", servo.ID)
						angle = 0
					}
					series[i].Values = append(series[i].Values, angle)
				}

				<-ticker.C
			}

			//
			// Render chart
			//

			opt := charts.NewLineChartOptionWithSeries(series)
			opt.Theme = charts.GetTheme(charts.ThemeVividDark)
			opt.Padding = charts.NewBox(20, 20, 20, 20)
			opt.Title.Text = "HerkuleX angles"
			if pose != "" {
				opt.Title.Text = fmt.Sprintf("pose %s over %s", pose, cfg.PlayTime)
			}
			opt.Title.FontStyle.FontSize = 16
			opt.Title.Offset = charts.OffsetLeft
			opt.Legend = charts.LegendOption{
				Show:     herkulexd.ToPtr(true),
				Offset:   charts.OffsetCenter,
				Vertical: herkulexd.ToPtr(true),
				Padding:  charts.NewBox(0, 0, 0, 20),
			}
			opt.Symbol = charts.SymbolNone
			opt.LineStrokeWidth = 2
			opt.XAxis.Show = herkulexd.ToPtr(true)
			opt.XAxis.Title = "ms"
			opt.XAxis.Labels = labels
			opt.XAxis.LabelCount = min(len(labels), 10)
			opt.YAxis = []charts.YAxisOption{
				{
					Show:                   herkulexd.ToPtr(true),
					Title:                  "°",
					Min:                    herkulexd.ToPtr(-herkulex.MaxAngle),
					Max:                    herkulexd.ToPtr(herkulex.MaxAngle),
					RangeValuePaddingScale: herkulexd.ToPtr(float64(0)),
				},
			}
			p := charts.NewPainter(charts.PainterOptions{
				OutputFormat: charts.ChartOutputPNG,
				Width:        resolution,
				Height:       int(float64(resolution) / (16.0 / 9.0)),
			})

			err = p.LineChart(opt)
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			mPNG, err := p.Bytes()
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			m, _, err := image.Decode(bytes.NewReader(mPNG))
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			codec := sixel.NewEncoder(os.Stdout)
			return codec.Encode(m)
		},
	}
	cmd.Flags().StringVarP(&pose, "pose", "p", "", "Pose played before recording")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 3*time.Second, "Recording duration")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 50*time.Millisecond, "Sampling interval")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 1000, "The width size in pixel of the graph")

	return cmd
}
