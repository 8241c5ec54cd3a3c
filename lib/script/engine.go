package script

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
)

type engine struct {
	stack   scrStack
	alt     scrStack
	cmds    []Cmd
	z       *big.Int
	witness [][]byte
}

// Evaluate runs the script against digest z. The witness is only consulted
// when the script redeems a P2WPKH or P2WSH program.
func (s *Script) Evaluate(z *big.Int, witness [][]byte) bool {
	e := s.EvaluateWithError(z, witness)
	if e != nil {
		log.Debug("script evaluation failed", zap.Error(e), zap.Stringer("script", s))
	}
	return e == nil
}

// EvaluateWithError is Evaluate returning the reason for a failure.
func (s *Script) EvaluateWithError(z *big.Int, witness [][]byte) (e error) {
	defer func() {
		if r := recover(); r != nil {
			e = errors.Errorf("script evaluation panic: %v", r)
		}
	}()
	vm := &engine{
		cmds:    append([]Cmd(nil), s.Cmds...),
		z:       z,
		witness: witness,
	}
	return vm.run()
}

func (vm *engine) run() error {
	for len(vm.cmds) > 0 {
		cmd := vm.cmds[0]
		vm.cmds = vm.cmds[1:]

		if cmd.IsData {
			vm.stack.push(cmd.Data)
			if e := vm.expand(); e != nil {
				return e
			}
			continue
		}

		if e := vm.execute(cmd.Op); e != nil {
			return errors.Wrap(e, cmd.Op.String())
		}
	}

	if vm.stack.size() == 0 {
		return ErrEmptyStack
	}
	if !castToBool(vm.stack.top(-1)) {
		return ErrEvalFalse
	}
	return nil
}

// expand replaces a just pushed P2SH, P2WPKH or P2WSH program with the script it commits to.
func (vm *engine) expand() error {
	if isP2SH(vm.cmds) {
		return vm.redeemP2SH()
	}
	if len(vm.cmds) == 0 && vm.stack.size() == 2 && len(vm.stack.top(-2)) == 0 {
		switch len(vm.stack.top(-1)) {
		case 20:
			return vm.redeemP2WPKH()
		case 32:
			return vm.redeemP2WSH()
		}
	}
	return nil
}

func (vm *engine) redeemP2SH() error {
	h160 := vm.cmds[1].Data
	vm.cmds = nil
	redeem := vm.stack.top(-1)

	if e := vm.execute(OP_HASH160); e != nil {
		return e
	}
	vm.stack.push(h160)
	if e := vm.execute(OP_EQUAL); e != nil {
		return e
	}
	if !vm.stack.popBool() {
		return ErrP2SHMismatch
	}

	scr, e := ParseRaw(redeem)
	if e != nil {
		return errors.Wrap(e, "redeem script")
	}
	vm.cmds = append([]Cmd(nil), scr.Cmds...)
	return nil
}

func (vm *engine) redeemP2WPKH() error {
	h160 := vm.stack.pop()
	vm.stack.pop()
	if len(vm.witness) == 0 {
		return errors.Wrap(ErrWitnessMissing, "p2wpkh")
	}

	cmds := make([]Cmd, 0, len(vm.witness)+5)
	for _, w := range vm.witness {
		cmds = append(cmds, Element(w))
	}
	vm.cmds = append(cmds, P2PKHScript(h160).Cmds...)
	return nil
}

func (vm *engine) redeemP2WSH() error {
	s256 := vm.stack.pop()
	vm.stack.pop()
	if len(vm.witness) == 0 {
		return errors.Wrap(ErrWitnessMissing, "p2wsh")
	}

	witnessScript := vm.witness[len(vm.witness)-1]
	if h := btc.Sha256(witnessScript); !bytes.Equal(h[:], s256) {
		return errors.Wrap(ErrWitnessHashMismatch, fmt.Sprintf("%x", s256))
	}
	scr, e := ParseRaw(witnessScript)
	if e != nil {
		return errors.Wrap(e, "witness script")
	}

	cmds := make([]Cmd, 0, len(vm.witness)-1+len(scr.Cmds))
	for _, w := range vm.witness[:len(vm.witness)-1] {
		cmds = append(cmds, Element(w))
	}
	vm.cmds = append(cmds, scr.Cmds...)
	return nil
}

// splitConditional returns the two branches of the IF just consumed and the commands after its ENDIF.
func splitConditional(cmds []Cmd) (ifTrue, ifFalse, rest []Cmd, e error) {
	current := &ifTrue
	depth := 1
	for i, c := range cmds {
		switch {
		case c.Is(OP_IF) || c.Is(OP_NOTIF):
			depth++
		case c.Is(OP_ELSE) && depth == 1:
			current = &ifFalse
			continue
		case c.Is(OP_ENDIF):
			if depth == 1 {
				return ifTrue, ifFalse, cmds[i+1:], nil
			}
			depth--
		}
		*current = append(*current, c)
	}
	e = errors.Wrap(ErrUnbalancedConditional, "missing OP_ENDIF")
	return
}
