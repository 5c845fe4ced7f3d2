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
	"math/big"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/ot"
	"github.com/markkurossi/gcmpc/threepac"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var protocolFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "proto",
		Usage: "protocol: 2pc or 3pc",
		Value: "3pc",
	},
	&cli.StringFlag{
		Name:  "verify",
		Usage: "3PC verification: hash or equality",
		Value: threepac.AlternatingHash.String(),
	},
	&cli.IntFlag{
		Name:  "every",
		Usage: "3PC alternating hash chunk size in bytes",
		Value: threepac.DefaultConfig().AlternateEvery,
	},
	&cli.BoolFlag{
		Name:  "semi-honest",
		Usage: "do not verify the 3PC input commitments",
	},
	&cli.StringFlag{
		Name:  "ot",
		Usage: "2PC oblivious transfer: co or np",
		Value: "co",
	},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "garbled",
		Usage: "Garbled circuit multi-party computation",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "local",
				Usage:     "run all parties in this process",
				ArgsUsage: "INPUT...",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "circuit",
						Usage:    "Bristol circuit file",
						Required: true,
					},
				}, protocolFlags...),
				Action: localAction,
			},
			{
				Name:      "party",
				Usage:     "run one party over TCP",
				ArgsUsage: "INPUT...",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "circuit",
						Usage:    "Bristol circuit file",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "id",
						Usage:    "party ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen address for peer connections",
						Value: ":8080",
					},
					&cli.StringSliceFlag{
						Name:  "peer",
						Usage: "peer address as ID=ADDR",
					},
				}, protocolFlags...),
				Action: partyAction,
			},
			{
				Name:      "sha256",
				Usage:     "compute SHA-256 of a short message in 3PC",
				ArgsUsage: "MESSAGE",
				Flags:     protocolFlags,
				Action:    sha256Action,
			},
			{
				Name:      "circuit",
				Usage:     "print circuit information",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "output format: bristol, dump, or dot",
					},
				},
				Action: circuitAction,
			},
			{
				Name:  "iotest",
				Usage: "measure the label stream throughput between two parties",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "id",
						Usage: "party ID: 0 sends, 1 receives",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen address for peer connections",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:  "peer",
						Usage: "address of the sending party",
						Value: "127.0.0.1:8080",
					},
					&cli.Int64Flag{
						Name:  "size",
						Usage: "number of bytes to transfer",
						Value: 100 * 1024 * 1024,
					},
				},
				Action: iotestAction,
			},
		},
	}
}

func newConfig(c *cli.Context) (*env.Config, error) {
	cfg := &env.Config{
		Verbose: c.Bool("verbose"),
	}
	if cfg.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
	}
	return cfg, nil
}

func newThreepacConfig(c *cli.Context) (*threepac.Config, error) {
	verification, err := threepac.ParseVerification(c.String("verify"))
	if err != nil {
		return nil, err
	}
	return &threepac.Config{
		AlternateEvery:   c.Int("every"),
		Verification:     verification,
		CheckCommitments: !c.Bool("semi-honest"),
	}, nil
}

func newOT(c *cli.Context, cfg *env.Config) (ot.OT, error) {
	switch c.String("ot") {
	case "co":
		return ot.NewCO(cfg.GetRandom()), nil
	case "np":
		return ot.NewNaorPinkas(cfg.GetRandom()), nil
	default:
		return nil, errors.Newf("unknown OT '%s'", c.String("ot"))
	}
}

func loadCircuit(file string) (*circuit.Circuit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return circuit.Parse(f)
}

func parseInputs(args []string) ([]*big.Int, error) {
	var result []*big.Int
	for _, arg := range args {
		v, ok := new(big.Int).SetString(arg, 0)
		if !ok {
			return nil, errors.Newf("invalid input '%s'", arg)
		}
		result = append(result, v)
	}
	return result, nil
}

// partyInputs returns the circuit's input values of the party id.
func partyInputs(proto string, id int, inputs []*big.Int) []*big.Int {
	first := id
	if proto == "2pc" && id > 0 {
		return inputs[min(1, len(inputs)):]
	}
	if proto == "3pc" && id == int(threepac.IDEvaluator) {
		return inputs[min(2, len(inputs)):]
	}
	if first >= len(inputs) {
		return nil
	}
	return inputs[first : first+1]
}

func printResults(circ *circuit.Circuit, results []*big.Int) {
	var parts []string
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("%s=%s", circ.Outputs[i].Name,
			r.Text(16)))
	}
	fmt.Printf("Result: %s\n", strings.Join(parts, " "))
}

func circuitAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one circuit file")
	}
	circ, err := loadCircuit(c.Args().First())
	if err != nil {
		return err
	}
	if len(c.String("format")) > 0 {
		return circ.MarshalFormat(os.Stdout, c.String("format"))
	}
	fmt.Printf("Circuit: %v\n", circ)
	fmt.Printf(" - Inputs : %v\n", circ.Inputs)
	fmt.Printf(" - Outputs: %v\n", circ.Outputs)
	fmt.Printf(" - Cost   : %d\n", circ.Cost())
	return nil
}
