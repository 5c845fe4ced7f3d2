//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/ot"
	"github.com/markkurossi/gcmpc/p2p"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// iotestAction measures the transport throughput between two parties
// with the label stream of a garbling session. Party 0 sends the
// labels and party 1 receives them.
func iotestAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	id := c.Int("id")
	if id != 0 && id != 1 {
		return errors.Newf("invalid party ID %d", id)
	}
	nw, err := p2p.NewNetwork(cfg, c.String("listen"), id)
	if err != nil {
		return err
	}
	defer nw.Close()

	var conn *p2p.Conn
	if id == 0 {
		conn, err = nw.Peer(1)
	} else {
		conn, err = nw.AddPeer(c.String("peer"), 0, 0)
	}
	if err != nil {
		return err
	}
	ch := channel.New(conn)

	numLabels := c.Int64("size") / int64(len(ot.LabelData{}))

	start := time.Now()
	if id == 0 {
		var label ot.Label
		for i := int64(0); i < numLabels; i++ {
			label.D1 = uint64(i)
			if err := ch.WriteBlock(label); err != nil {
				return err
			}
		}
		if err := ch.Flush(); err != nil {
			return err
		}
		// Wait for the receiver's acknowledgement.
		if _, err := ch.ReadU8(); err != nil {
			return err
		}
	} else {
		for i := int64(0); i < numLabels; i++ {
			label, err := ch.ReadBlock()
			if err != nil {
				return err
			}
			if label.D1 != uint64(i) {
				return errors.Newf("label %d: got %v", i, label)
			}
		}
		if err := ch.WriteU8(1); err != nil {
			return err
		}
		if err := ch.Flush(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	stats := nw.Stats()
	cfg.GetLogger().Debug("iotest done", zap.Uint64("sent", stats.Sent),
		zap.Uint64("recvd", stats.Recvd), zap.Uint64("flushed", stats.Flushed))

	xfer := circuit.FileSize(stats.Sum())
	fmt.Printf("Transferred %v in %s (%v/s)\n", xfer, elapsed,
		circuit.FileSize(float64(stats.Sum())/elapsed.Seconds()))
	return nil
}
