// Command liveplot-demo feeds synthetic signals into a live plot. It doubles
// as a smoke test for the two-process mode: run `liveplot-demo -listen` in
// one terminal and `liveplot-demo -remote ws://localhost:7420` in another.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/liveplot/liveplot"
)

func main() {
	var (
		mode    = flag.String("mode", "sine", "signal to plot: sine, lissajous, helix")
		listen  = flag.Bool("listen", false, "run as a consumer process instead of producing")
		addr    = flag.String("addr", ":7420", "listen address for -listen")
		remote  = flag.String("remote", "", "consumer URL (ws://host:port); empty renders in-process")
		tail    = flag.Duration("tail", 10*time.Second, "how much history to keep on screen")
		seconds = flag.Duration("for", 30*time.Second, "how long to produce data")
	)
	flag.Parse()

	if *listen {
		if err := liveplot.ListenAndServe(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch *mode {
	case "sine":
		err = runSine(*remote, *tail, *seconds)
	case "lissajous":
		err = runLissajous(*remote, *tail, *seconds)
	case "helix":
		err = runHelix(*remote, *tail, *seconds)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func options(remote string, tail time.Duration, extra ...liveplot.Option) []liveplot.Option {
	opts := []liveplot.Option{
		liveplot.WithTailLength(tail),
		liveplot.WithRefreshRate(20),
	}
	if remote != "" {
		opts = append(opts, liveplot.WithRemote(remote))
	}
	return append(opts, extra...)
}

// runSine plots two phase-shifted sines against time.
func runSine(remote string, tail, dur time.Duration) error {
	p := liveplot.TimeSeries(options(remote, tail,
		liveplot.WithTitle("sine"),
		liveplot.WithLineStyles("6", "3"),
		liveplot.WithStatics(liveplot.HLine{Y: 0}),
	)...)
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Close()

	return produce(p, dur, 50*time.Millisecond, func(t float64) error {
		return p.Update(math.Sin(t), 0.5*math.Sin(2*t+1))
	})
}

// runLissajous traces a 3:2 Lissajous figure.
func runLissajous(remote string, tail, dur time.Duration) error {
	p := liveplot.XY(options(remote, tail,
		liveplot.WithTitle("lissajous"),
		liveplot.WithStatics(
			liveplot.Circle{X: 0, Y: 0, Radius: 1},
			liveplot.Point{X: 0, Y: 0},
		),
	)...)
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Close()

	return produce(p, dur, 20*time.Millisecond, func(t float64) error {
		return p.UpdateXY([2]float64{math.Sin(3 * t), math.Sin(2 * t)})
	})
}

// runHelix climbs a slow helix in three dimensions.
func runHelix(remote string, tail, dur time.Duration) error {
	p := liveplot.XYZ(options(remote, tail,
		liveplot.WithTitle("helix"),
	)...)
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Close()

	return produce(p, dur, 20*time.Millisecond, func(t float64) error {
		return p.UpdateXYZ([3]float64{math.Cos(t), math.Sin(t), 0.1 * t})
	})
}

// produce drives the update callback at a fixed step until the duration
// elapses or the session ends (for example when the viewer presses q).
func produce(p *liveplot.Plot, dur, step time.Duration, update func(t float64) error) error {
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	deadline := time.After(dur)
	start := time.Now()

	for {
		select {
		case <-p.Done():
			return p.Err()
		case <-deadline:
			return nil
		case <-ticker.C:
			if err := update(time.Since(start).Seconds()); err != nil {
				return nil
			}
		}
	}
}
