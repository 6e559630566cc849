// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
)

// Response is the form used for JSON-RPC error responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Trusted is used to pass an error through the application with
// JSON-RPC specific context: every Kind the chain engine can return is
// given a stable code in the -32000 application-defined range, per the
// JSON-RPC 2.0 spec.
type Trusted struct {
	Err  error
	Code int
}

// kindCodes assigns each chain engine error Kind a JSON-RPC application
// error code. Codes are stable across releases; never renumber one.
var kindCodes = map[chainerr.Kind]int{
	chainerr.KindStoreIO:             -32000,
	chainerr.KindNotFound:            -32001,
	chainerr.KindWrongParent:         -32002,
	chainerr.KindWrongHeight:         -32003,
	chainerr.KindBadMerkle:           -32004,
	chainerr.KindBadPOW:              -32005,
	chainerr.KindWrongDifficulty:     -32006,
	chainerr.KindBadTimestamp:        -32007,
	chainerr.KindDuplicateTx:         -32008,
	chainerr.KindMempoolFull:         -32009,
	chainerr.KindSerializationError:  -32010,
	chainerr.KindCancelledByShutdown: -32011,
}

// NewTrusted wraps err for the RPC facade, using err's chain engine Kind
// to pick a JSON-RPC error code if it has one, and -32000 otherwise.
func NewTrusted(err error) error {
	code := -32000
	if kind, ok := chainerr.KindOf(err); ok {
		if c, ok := kindCodes[kind]; ok {
			code = c
		}
	}
	return &Trusted{Err: err, Code: code}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// IsTrusted checks if an error of type *Trusted exists in err's chain.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns the *Trusted in err's chain, or nil if there is none.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}
