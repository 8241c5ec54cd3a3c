package script

// Standard output templates.

func P2PKHScript(h160 []byte) *Script {
	return New(Op(OP_DUP), Op(OP_HASH160), Element(h160), Op(OP_EQUALVERIFY), Op(OP_CHECKSIG))
}

func P2SHScript(h160 []byte) *Script {
	return New(Op(OP_HASH160), Element(h160), Op(OP_EQUAL))
}

func P2WPKHScript(h160 []byte) *Script {
	return New(Op(OP_0), Element(h160))
}

func P2WSHScript(h256 []byte) *Script {
	return New(Op(OP_0), Element(h256))
}

// MultisigScript returns "m <pub1> ... <pubn> n OP_CHECKMULTISIG".
func MultisigScript(m int, pubs ...[]byte) *Script {
	res := New(Op(SmallInt(m)))
	for _, p := range pubs {
		res.Cmds = append(res.Cmds, Element(p))
	}
	res.Cmds = append(res.Cmds, Op(SmallInt(len(pubs))), Op(OP_CHECKMULTISIG))
	return res
}

func isP2SH(c []Cmd) bool {
	return len(c) == 3 && c[0].Is(OP_HASH160) && c[1].isElement(20) && c[2].Is(OP_EQUAL)
}

func (s *Script) IsP2PKH() bool {
	c := s.Cmds
	return len(c) == 5 && c[0].Is(OP_DUP) && c[1].Is(OP_HASH160) && c[2].isElement(20) &&
		c[3].Is(OP_EQUALVERIFY) && c[4].Is(OP_CHECKSIG)
}

func (s *Script) IsP2SH() bool {
	return isP2SH(s.Cmds)
}

func (s *Script) IsP2WPKH() bool {
	return len(s.Cmds) == 2 && s.Cmds[0].Is(OP_0) && s.Cmds[1].isElement(20)
}

func (s *Script) IsP2WSH() bool {
	return len(s.Cmds) == 2 && s.Cmds[0].Is(OP_0) && s.Cmds[1].isElement(32)
}

// Hash returns the hash embedded in a P2PKH, P2SH, P2WPKH or P2WSH script.
func (s *Script) Hash() []byte {
	switch {
	case s.IsP2PKH():
		return s.Cmds[2].Data
	case s.IsP2SH(), s.IsP2WPKH(), s.IsP2WSH():
		return s.Cmds[1].Data
	}
	return nil
}

// Type names the template the script matches.
func (s *Script) Type() string {
	switch {
	case s.IsP2PKH():
		return "p2pkh"
	case s.IsP2SH():
		return "p2sh"
	case s.IsP2WPKH():
		return "p2wpkh"
	case s.IsP2WSH():
		return "p2wsh"
	}
	return "nonstandard"
}
