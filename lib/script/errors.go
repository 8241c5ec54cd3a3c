package script

import "github.com/pkg/errors"

// Parse and serialization errors.
var (
	ErrScriptParse     = errors.New("script parse error")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrElementTooLarge = errors.New("script element too large")
)

// Evaluation errors. Every one of them means "script invalid".
var (
	ErrEvalFalse             = errors.New("script evaluated to false")
	ErrEmptyStack            = errors.New("stack empty at end of script")
	ErrStackUnderflow        = errors.New("operation not valid with the current stack size")
	ErrAltStackEmpty         = errors.New("alt stack is empty")
	ErrVerifyFailed          = errors.New("verify failed")
	ErrEarlyReturn           = errors.New("OP_RETURN encountered")
	ErrDisabledOpcode        = errors.New("disabled opcode")
	ErrBadOpcode             = errors.New("opcode not valid in this position")
	ErrUnbalancedConditional = errors.New("unbalanced conditional")
	ErrNumberTooBig          = errors.New("script number overflow")
	ErrMissingDigest         = errors.New("signature check without a digest")
	ErrInvalidIndex          = errors.New("stack index out of range")
	ErrPubkeyCount           = errors.New("pubkey count out of range")
	ErrSigCount              = errors.New("signature count out of range")
	ErrWitnessMissing        = errors.New("witness program without witness")
	ErrWitnessHashMismatch   = errors.New("witness script does not match program hash")
	ErrP2SHMismatch          = errors.New("redeem script does not match script hash")
)
