//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"github.com/cockroachdb/errors"
)

// Error classes. Every error returned by the Garbler is marked with
// ErrGarbler and every error returned by the Evaluator with
// ErrEvaluator. Transport failures carry channel.ErrIO.
var (
	ErrGarbler   = errors.New("garbler error")
	ErrEvaluator = errors.New("evaluator error")
)

// Protocol logic errors.
var (
	ErrModulusMismatch    = errors.New("modulus mismatch")
	ErrInvalidModulus     = errors.New("invalid modulus")
	ErrTruthTableRequired = errors.New("truth table required")
	ErrAsymmetricModulus  = errors.New("asymmetric modulus too large")
	ErrDecodingFailed     = errors.New("output decoding failed")
)

func garblerError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrGarbler)
}

func evaluatorError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrEvaluator)
}

func checkModulus(q uint16) error {
	if q < 2 {
		return errors.Wrapf(ErrInvalidModulus, "q=%d", q)
	}
	return nil
}

func checkModuli(op string, x, y Wire) error {
	if x.q != y.q {
		return errors.Wrapf(ErrModulusMismatch, "%s: %d != %d", op, x.q, y.q)
	}
	return nil
}

func checkTruthTable(tt []uint16, qin uint16) error {
	if tt == nil {
		return ErrTruthTableRequired
	}
	if len(tt) < int(qin) {
		return errors.Wrapf(ErrTruthTableRequired,
			"truth table has %d entries, expected %d", len(tt), qin)
	}
	return nil
}
