package btc

const (
	COIN                     = 1e8
	MAX_MONEY                = 21000000 * COIN
	MAX_SCRIPT_ELEMENT_SIZE  = 520
	MAX_PUBKEYS_PER_MULTISIG = 20

	SIGHASH_ALL = 1

	// sequence and prev index of a coinbase input
	COINBASE_INDEX = 0xffffffff
)
