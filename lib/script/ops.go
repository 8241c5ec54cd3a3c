package script

import (
	"bytes"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/secp256k1"
)

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// execute runs a single opcode against the engine state.
func (vm *engine) execute(op Opcode) error {
	st := &vm.stack

	switch {
	case op == OP_0:
		st.push([]byte{})

	case op == OP_1NEGATE:
		st.pushInt(-1)

	case op >= OP_1 && op <= OP_16:
		st.pushInt(int64(op - OP_1 + 1))

	case op == OP_NOP || op == OP_NOP1 || op == OP_CODESEPARATOR ||
		op == OP_CHECKLOCKTIMEVERIFY || op == OP_CHECKSEQUENCEVERIFY ||
		(op >= OP_NOP4 && op <= OP_NOP10):
		// no-op; lock time checks need a transaction context the engine does not carry

	case op == OP_IF || op == OP_NOTIF:
		if e := st.need(1); e != nil {
			return e
		}
		ifTrue, ifFalse, rest, e := splitConditional(vm.cmds)
		if e != nil {
			return e
		}
		cond := st.popBool()
		if op == OP_NOTIF {
			cond = !cond
		}
		branch := ifFalse
		if cond {
			branch = ifTrue
		}
		cmds := make([]Cmd, 0, len(branch)+len(rest))
		vm.cmds = append(append(cmds, branch...), rest...)

	case op == OP_ELSE || op == OP_ENDIF:
		return ErrUnbalancedConditional

	case op == OP_VERIFY:
		if e := st.need(1); e != nil {
			return e
		}
		if !st.popBool() {
			return ErrVerifyFailed
		}

	case op == OP_RETURN:
		return ErrEarlyReturn

	case op == OP_TOALTSTACK:
		if e := st.need(1); e != nil {
			return e
		}
		vm.alt.push(st.pop())

	case op == OP_FROMALTSTACK:
		if vm.alt.size() < 1 {
			return ErrAltStackEmpty
		}
		st.push(vm.alt.pop())

	case op == OP_2DROP:
		if e := st.need(2); e != nil {
			return e
		}
		st.pop()
		st.pop()

	case op == OP_2DUP:
		if e := st.need(2); e != nil {
			return e
		}
		st.push(st.top(-2))
		st.push(st.top(-2))

	case op == OP_3DUP:
		if e := st.need(3); e != nil {
			return e
		}
		st.push(st.top(-3))
		st.push(st.top(-3))
		st.push(st.top(-3))

	case op == OP_2OVER:
		// (x1 x2 x3 x4 -- x1 x2 x3 x4 x1 x2)
		if e := st.need(4); e != nil {
			return e
		}
		st.push(st.top(-4))
		st.push(st.top(-4))

	case op == OP_2ROT:
		// (x1 x2 x3 x4 x5 x6 -- x3 x4 x5 x6 x1 x2)
		if e := st.need(6); e != nil {
			return e
		}
		x1 := st.remove(-6)
		x2 := st.remove(-5)
		st.push(x1)
		st.push(x2)

	case op == OP_2SWAP:
		// (x1 x2 x3 x4 -- x3 x4 x1 x2)
		if e := st.need(4); e != nil {
			return e
		}
		x1 := st.remove(-4)
		x2 := st.remove(-3)
		st.push(x1)
		st.push(x2)

	case op == OP_IFDUP:
		if e := st.need(1); e != nil {
			return e
		}
		if castToBool(st.top(-1)) {
			st.push(st.top(-1))
		}

	case op == OP_DEPTH:
		st.pushInt(int64(st.size()))

	case op == OP_DROP:
		if e := st.need(1); e != nil {
			return e
		}
		st.pop()

	case op == OP_DUP:
		if e := st.need(1); e != nil {
			return e
		}
		st.push(st.top(-1))

	case op == OP_NIP:
		if e := st.need(2); e != nil {
			return e
		}
		st.remove(-2)

	case op == OP_OVER:
		if e := st.need(2); e != nil {
			return e
		}
		st.push(st.top(-2))

	case op == OP_PICK || op == OP_ROLL:
		if e := st.need(2); e != nil {
			return e
		}
		n, e := st.popNum()
		if e != nil {
			return e
		}
		if n < 0 || n >= int64(st.size()) {
			return errors.Wrapf(ErrInvalidIndex, "%d", n)
		}
		if op == OP_PICK {
			st.push(st.top(int(-1 - n)))
		} else {
			st.push(st.remove(int(-1 - n)))
		}

	case op == OP_ROT:
		if e := st.need(3); e != nil {
			return e
		}
		st.push(st.remove(-3))

	case op == OP_SWAP:
		if e := st.need(2); e != nil {
			return e
		}
		st.push(st.remove(-2))

	case op == OP_TUCK:
		// (x1 x2 -- x2 x1 x2)
		if e := st.need(2); e != nil {
			return e
		}
		x2 := st.pop()
		x1 := st.pop()
		st.push(x2)
		st.push(x1)
		st.push(x2)

	case op == OP_SIZE:
		if e := st.need(1); e != nil {
			return e
		}
		st.pushInt(int64(len(st.top(-1))))

	case op == OP_CAT || op == OP_SUBSTR || op == OP_LEFT || op == OP_RIGHT ||
		op == OP_INVERT || op == OP_AND || op == OP_OR || op == OP_XOR ||
		op == OP_2MUL || op == OP_2DIV || op == OP_MUL || op == OP_DIV ||
		op == OP_MOD || op == OP_LSHIFT || op == OP_RSHIFT:
		return ErrDisabledOpcode

	case op == OP_EQUAL || op == OP_EQUALVERIFY:
		if e := st.need(2); e != nil {
			return e
		}
		eq := bytes.Equal(st.pop(), st.pop())
		if op == OP_EQUALVERIFY {
			if !eq {
				return ErrVerifyFailed
			}
			break
		}
		st.pushBool(eq)

	case op >= OP_1ADD && op <= OP_0NOTEQUAL:
		if e := st.need(1); e != nil {
			return e
		}
		n, e := st.popNum()
		if e != nil {
			return e
		}
		switch op {
		case OP_1ADD:
			n++
		case OP_1SUB:
			n--
		case OP_NEGATE:
			n = -n
		case OP_ABS:
			if n < 0 {
				n = -n
			}
		case OP_NOT:
			n = b2i(n == 0)
		case OP_0NOTEQUAL:
			n = b2i(n != 0)
		}
		st.pushInt(n)

	case op >= OP_ADD && op <= OP_MAX:
		if e := st.need(2); e != nil {
			return e
		}
		b, e := st.popNum()
		if e != nil {
			return e
		}
		a, e := st.popNum()
		if e != nil {
			return e
		}
		var n int64
		switch op {
		case OP_ADD:
			n = a + b
		case OP_SUB:
			n = a - b
		case OP_BOOLAND:
			n = b2i(a != 0 && b != 0)
		case OP_BOOLOR:
			n = b2i(a != 0 || b != 0)
		case OP_NUMEQUAL, OP_NUMEQUALVERIFY:
			n = b2i(a == b)
		case OP_NUMNOTEQUAL:
			n = b2i(a != b)
		case OP_LESSTHAN:
			n = b2i(a < b)
		case OP_GREATERTHAN:
			n = b2i(a > b)
		case OP_LESSTHANOREQUAL:
			n = b2i(a <= b)
		case OP_GREATERTHANOREQUAL:
			n = b2i(a >= b)
		case OP_MIN:
			n = a
			if b < a {
				n = b
			}
		case OP_MAX:
			n = a
			if b > a {
				n = b
			}
		}
		if op == OP_NUMEQUALVERIFY {
			if n == 0 {
				return ErrVerifyFailed
			}
			break
		}
		st.pushInt(n)

	case op == OP_WITHIN:
		// (x min max -- out)
		if e := st.need(3); e != nil {
			return e
		}
		hi, e := st.popNum()
		if e != nil {
			return e
		}
		lo, e := st.popNum()
		if e != nil {
			return e
		}
		x, e := st.popNum()
		if e != nil {
			return e
		}
		st.pushBool(lo <= x && x < hi)

	case op >= OP_RIPEMD160 && op <= OP_HASH256:
		if e := st.need(1); e != nil {
			return e
		}
		d := st.pop()
		switch op {
		case OP_RIPEMD160:
			h := btc.Ripemd160(d)
			st.push(h[:])
		case OP_SHA1:
			h := btc.Sha1Sum(d)
			st.push(h[:])
		case OP_SHA256:
			h := btc.Sha256(d)
			st.push(h[:])
		case OP_HASH160:
			h := btc.Rimp160AfterSha256(d)
			st.push(h[:])
		case OP_HASH256:
			h := btc.Sha2Sum(d)
			st.push(h[:])
		}

	case op == OP_CHECKSIG || op == OP_CHECKSIGVERIFY:
		if e := st.need(2); e != nil {
			return e
		}
		if vm.z == nil {
			return ErrMissingDigest
		}
		pub := st.pop()
		sig := st.pop()
		ok, e := vm.checkSig(sig, pub)
		if e != nil {
			return e
		}
		if op == OP_CHECKSIGVERIFY {
			if !ok {
				return ErrVerifyFailed
			}
			break
		}
		st.pushBool(ok)

	case op == OP_CHECKMULTISIG || op == OP_CHECKMULTISIGVERIFY:
		ok, e := vm.checkMultisig()
		if e != nil {
			return e
		}
		if op == OP_CHECKMULTISIGVERIFY {
			if !ok {
				return ErrVerifyFailed
			}
			break
		}
		st.pushBool(ok)

	default:
		return ErrBadOpcode
	}

	return nil
}

// checkSig verifies a DER signature with a trailing sighash byte against a SEC key.
// An empty signature is a plain mismatch, malformed encodings are errors.
func (vm *engine) checkSig(sig, pub []byte) (bool, error) {
	if len(sig) == 0 {
		return false, nil
	}
	point, e := secp256k1.ParseSec(pub)
	if e != nil {
		return false, e
	}
	s, e := secp256k1.ParseDER(sig[:len(sig)-1])
	if e != nil {
		return false, e
	}
	return point.Verify(vm.z, s), nil
}

// checkMultisig consumes "<dummy> <sig1>..<sigm> m <pub1>..<pubn> n".
// The extra dummy item popped here is a consensus rule (the CHECKMULTISIG off-by-one).
func (vm *engine) checkMultisig() (bool, error) {
	st := &vm.stack
	if e := st.need(1); e != nil {
		return false, e
	}
	n, e := st.popNum()
	if e != nil {
		return false, e
	}
	if n < 0 || n > btc.MAX_PUBKEYS_PER_MULTISIG {
		return false, errors.Wrapf(ErrPubkeyCount, "%d", n)
	}
	if e = st.need(int(n) + 1); e != nil {
		return false, e
	}
	pubs := make([][]byte, n)
	for i := range pubs {
		pubs[i] = st.pop()
	}

	m, e := st.popNum()
	if e != nil {
		return false, e
	}
	if m < 0 || m > n {
		return false, errors.Wrapf(ErrSigCount, "%d of %d", m, n)
	}
	if e = st.need(int(m) + 1); e != nil {
		return false, e
	}
	sigs := make([][]byte, m)
	for i := range sigs {
		sigs[i] = st.pop()
	}
	st.pop()

	if vm.z == nil {
		return false, ErrMissingDigest
	}

	// keys and signatures were both popped top first, so they are matched in the same order
	var isig int
	for ikey := 0; isig < len(sigs); ikey++ {
		if len(sigs)-isig > len(pubs)-ikey {
			return false, nil
		}
		ok, e := vm.checkSig(sigs[isig], pubs[ikey])
		if e != nil {
			log.Debug("multisig entry skipped", zap.Int("key", ikey), zap.Error(e))
			continue
		}
		if ok {
			isig++
		}
	}
	return true, nil
}
