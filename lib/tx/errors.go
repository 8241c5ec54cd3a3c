package tx

import "github.com/pkg/errors"

var (
	ErrTxParse          = errors.New("transaction parse error")
	ErrInputIndex       = errors.New("input index out of range")
	ErrPrevOutNotFound  = errors.New("previous output not found")
	ErrMissingRedeem    = errors.New("p2sh input without a redeem script")
	ErrMissingWitness   = errors.New("witness input without a witness script")
	ErrSigHashTemplate  = errors.New("script does not carry a hash for the script code")
	ErrNegativeFee      = errors.New("outputs spend more than the inputs")
	ErrValueRange       = errors.New("amount out of range")
	ErrSignatureInvalid = errors.New("input failed verification after signing")
)
