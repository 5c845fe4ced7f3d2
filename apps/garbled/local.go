//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/threepac"
	"github.com/markkurossi/gcmpc/twopac"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// trackedPipe creates an in-process pipe whose first endpoint tracks
// the traffic.
func trackedPipe() (*channel.Channel, *channel.Channel, *channel.Track) {
	a, b := channel.Pipe()
	track := channel.NewTrack(a)
	return channel.New(track), channel.New(b), track
}

func first(inputs []*big.Int) *big.Int {
	if len(inputs) == 0 {
		return nil
	}
	return inputs[0]
}

func localAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	circ, err := loadCircuit(c.String("circuit"))
	if err != nil {
		return err
	}
	inputs, err := parseInputs(c.Args().Slice())
	if err != nil {
		return err
	}
	fmt.Printf("Circuit: %v\n", circ)

	timing := circuit.NewTiming()
	var results []*big.Int
	var tracks []*channel.Track

	switch c.String("proto") {
	case "2pc":
		results, tracks, err = local2PC(c, cfg, circ, inputs)
	case "3pc":
		results, tracks, err = local3PC(c, cfg, circ, inputs)
	default:
		return errors.Newf("unknown protocol '%s'", c.String("proto"))
	}
	if err != nil {
		return err
	}
	timing.AddTracks(tracks...)
	timing.Phase("Eval")

	printResults(circ, results)
	if cfg.Verbose {
		timing.Print(os.Stdout)
	}
	return nil
}

func local2PC(c *cli.Context, cfg *env.Config, circ *circuit.Circuit,
	inputs []*big.Int) ([]*big.Int, []*channel.Track, error) {

	gch, ech, track := trackedPipe()
	sender, err := newOT(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := newOT(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := twopac.RunGarbler(cfg, gch, sender, circ,
			first(partyInputs("2pc", 0, inputs)))
		return err
	})
	result, err := twopac.RunEvaluator(cfg, ech, receiver, circ,
		partyInputs("2pc", 1, inputs))
	if err != nil {
		return nil, nil, err
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return result, []*channel.Track{track}, nil
}

func local3PC(c *cli.Context, cfg *env.Config, circ *circuit.Circuit,
	inputs []*big.Int) ([]*big.Int, []*channel.Track, error) {

	tcfg, err := newThreepacConfig(c)
	if err != nil {
		return nil, nil, err
	}
	g1g2, g2g1, peerTrack := trackedPipe()
	g1e, p1, track1 := trackedPipe()
	g2e, p2, track2 := trackedPipe()

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := threepac.RunGarbler(cfg, tcfg, threepac.IDGarbler1,
			g1g2, g1e, circ, first(partyInputs("3pc", 0, inputs)))
		return err
	})
	eg.Go(func() error {
		_, err := threepac.RunGarbler(cfg, tcfg, threepac.IDGarbler2,
			g2g1, g2e, circ, first(partyInputs("3pc", 1, inputs)))
		return err
	})
	result, err := threepac.RunEvaluator(cfg, tcfg, p1, p2, circ,
		partyInputs("3pc", 2, inputs))
	if err != nil {
		return nil, nil, err
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return result, []*channel.Track{peerTrack, track1, track2}, nil
}

func sha256Action(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one message")
	}
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	msg := []byte(c.Args().First())
	padded, err := circuit.PadBlock(msg)
	if err != nil {
		return errors.Wrapf(err, "sha256: at most %d bytes supported",
			circuit.MaxBlockMessage)
	}
	circ := circuit.NewSHA256Compression()
	fmt.Printf("Circuit: %v\n", circ)

	inputs := []*big.Int{
		circuit.PackWords(circuit.SHA256IV),
		circuit.PackWords(circuit.BlockWords(padded)),
	}

	timing := circuit.NewTiming()
	results, tracks, err := local3PC(c, cfg, circ, inputs)
	if err != nil {
		return err
	}
	timing.AddTracks(tracks...)
	timing.Phase("Eval")

	digest := circuit.SHA256Digest(results[0])
	expected := sha256.Sum256(msg)
	fmt.Printf("SHA-256: %x\n", digest)
	if string(digest) != string(expected[:]) {
		return errors.Newf("digest mismatch: expected %x", expected)
	}
	timing.Print(os.Stdout)
	return nil
}
