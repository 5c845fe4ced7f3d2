//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/ot"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "ot",
		Usage: "Oblivious transfer benchmark",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose output",
			},
			&cli.IntFlag{
				Name:  "n",
				Usage: "number of transfers",
				Value: 1024,
			},
			&cli.StringSliceFlag{
				Name:  "ot",
				Usage: "OT protocols to benchmark",
				Value: cli.NewStringSlice("co", "np"),
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c.Bool("verbose"))
			if err != nil {
				return err
			}
			count := c.Int("n")
			if count <= 0 {
				return errors.Newf("invalid transfer count %d", count)
			}

			var names []string
			var tracks []*channel.Track

			for _, name := range c.StringSlice("ot") {
				track, err := run(cfg, out, name, count)
				if err != nil {
					return errors.Wrap(err, name)
				}
				names = append(names, name)
				tracks = append(tracks, track)
			}
			channel.Report(out, names, tracks)
			return nil
		},
	}
}

func newConfig(verbose bool) (*env.Config, error) {
	cfg := &env.Config{
		Verbose: verbose,
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
	}
	return cfg, nil
}

func newOT(cfg *env.Config, name string) (ot.OT, error) {
	switch name {
	case "co":
		return ot.NewCO(cfg.GetRandom()), nil
	case "np":
		return ot.NewNaorPinkas(cfg.GetRandom()), nil
	default:
		return nil, errors.Newf("unknown OT '%s'", name)
	}
}

func run(cfg *env.Config, out io.Writer, name string, count int) (
	*channel.Track, error) {

	log := cfg.GetLogger().With(zap.String("ot", name))

	sender, err := newOT(cfg, name)
	if err != nil {
		return nil, err
	}
	receiver, err := newOT(cfg, name)
	if err != nil {
		return nil, err
	}

	wires := make([]ot.Wire, count)
	flags := make([]bool, count)
	for i := range wires {
		wires[i].L0, err = ot.NewLabel(cfg.GetRandom())
		if err != nil {
			return nil, err
		}
		wires[i].L1, err = ot.NewLabel(cfg.GetRandom())
		if err != nil {
			return nil, err
		}
		flags[i] = i%3 == 0
	}

	a, b := channel.Pipe()
	track := channel.NewTrack(a)

	start := time.Now()

	var eg errgroup.Group
	eg.Go(func() error {
		if err := sender.InitSender(channel.New(track)); err != nil {
			return err
		}
		return sender.Send(wires)
	})

	result := make([]ot.Label, count)
	err = receiver.InitReceiver(channel.New(b))
	if err == nil {
		log.Debug("receiver initialized", zap.Duration("elapsed",
			time.Since(start)))
		err = receiver.Receive(flags, result)
	}
	if err != nil {
		b.Close()
		eg.Wait()
		return nil, err
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for i, l := range result {
		expected := wires[i].L0
		if flags[i] {
			expected = wires[i].L1
		}
		if !l.Equal(expected) {
			return nil, errors.Newf("transfer %d: got %v, expected %v",
				i, l, expected)
		}
	}
	elapsed := time.Since(start)
	log.Debug("transfers done", zap.Int("count", count),
		zap.Uint64("sent", track.NBitsWritten()/8),
		zap.Uint64("recvd", track.NBitsRead()/8))
	fmt.Fprintf(out, "%s: %d transfers in %s\n", name, count, elapsed)

	return track, nil
}
