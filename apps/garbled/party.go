//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/p2p"
	"github.com/markkurossi/gcmpc/threepac"
	"github.com/markkurossi/gcmpc/twopac"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func parsePeers(peers []string) (map[int]string, error) {
	result := make(map[int]string)
	for _, peer := range peers {
		idx := strings.IndexByte(peer, '=')
		if idx < 0 {
			return nil, errors.Newf("invalid peer '%s'", peer)
		}
		id, err := strconv.Atoi(peer[:idx])
		if err != nil {
			return nil, errors.Wrapf(err, "peer '%s'", peer)
		}
		result[id] = peer[idx+1:]
	}
	return result, nil
}

func partyAction(c *cli.Context) error {
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
	peers, err := parsePeers(c.StringSlice("peer"))
	if err != nil {
		return err
	}

	proto := c.String("proto")
	var numParties int
	switch proto {
	case "2pc":
		numParties = 2
	case "3pc":
		numParties = 3
	default:
		return errors.Newf("unknown protocol '%s'", proto)
	}
	id := c.Int("id")
	if id < 0 || id >= numParties {
		return errors.Newf("invalid party ID %d for %s", id, proto)
	}

	nw, err := p2p.NewNetwork(cfg, c.String("listen"), id)
	if err != nil {
		return err
	}
	defer nw.Close()

	// Each party connects to the parties with smaller IDs and waits for
	// the parties with larger IDs.
	conns := make(map[int]*channel.Channel)
	var tracks []*channel.Track
	for peer := 0; peer < numParties; peer++ {
		if peer == id {
			continue
		}
		var conn *p2p.Conn
		if peer < id {
			addr, ok := peers[peer]
			if !ok {
				return errors.Newf("no address for peer %d", peer)
			}
			conn, err = nw.AddPeer(addr, peer, 0)
		} else {
			conn, err = nw.Peer(peer)
		}
		if err != nil {
			return err
		}
		track := channel.NewTrack(conn)
		tracks = append(tracks, track)
		conns[peer] = channel.New(track)
	}
	cfg.GetLogger().Debug("peers connected", zap.Int("party", id),
		zap.Int("peers", len(conns)))

	fmt.Printf("Circuit: %v\n", circ)
	timing := circuit.NewTiming()

	own := partyInputs(proto, id, inputs)
	var results []*big.Int

	switch proto {
	case "2pc":
		ot, err := newOT(c, cfg)
		if err != nil {
			return err
		}
		if id == int(twopac.IDGarbler) {
			results, err = twopac.RunGarbler(cfg, conns[1], ot, circ,
				first(own))
		} else {
			results, err = twopac.RunEvaluator(cfg, conns[0], ot, circ, own)
		}
		if err != nil {
			return err
		}

	case "3pc":
		tcfg, err := newThreepacConfig(c)
		if err != nil {
			return err
		}
		switch threepac.PartyID(id) {
		case threepac.IDGarbler1:
			results, err = threepac.RunGarbler(cfg, tcfg, threepac.IDGarbler1,
				conns[1], conns[2], circ, first(own))
		case threepac.IDGarbler2:
			results, err = threepac.RunGarbler(cfg, tcfg, threepac.IDGarbler2,
				conns[0], conns[2], circ, first(own))
		default:
			results, err = threepac.RunEvaluator(cfg, tcfg, conns[0],
				conns[1], circ, own)
		}
		if err != nil {
			return err
		}
	}
	timing.AddTracks(tracks...)
	timing.Phase("Eval")

	printResults(circ, results)
	if cfg.Verbose {
		timing.Print(os.Stdout)
	}
	return nil
}
