// Package chainerr defines the sentinel error kinds the chain engine and
// its RPC facade classify failures into. Callers use errors.Is against
// these sentinels; the RPC layer maps them to JSON-RPC error codes.
package chainerr

import "errors"

// Kind identifies which category of failure an error belongs to.
type Kind int

// The error kinds a chain operation can fail with.
const (
	KindStoreIO Kind = iota + 1
	KindNotFound
	KindWrongParent
	KindWrongHeight
	KindBadMerkle
	KindBadPOW
	KindWrongDifficulty
	KindBadTimestamp
	KindDuplicateTx
	KindMempoolFull
	KindSerializationError
	KindCancelledByShutdown
)

// Sentinel errors, one per Kind. Wrap with %w and compare with errors.Is;
// use KindOf to recover the originating Kind.
var (
	ErrStoreIO             = errors.New("chainerr: store I/O failure")
	ErrNotFound            = errors.New("chainerr: not found")
	ErrWrongParent         = errors.New("chainerr: block does not extend the current tip")
	ErrWrongHeight         = errors.New("chainerr: block height does not follow the parent")
	ErrBadMerkle           = errors.New("chainerr: merkle root does not match transactions")
	ErrBadPOW              = errors.New("chainerr: hash does not satisfy the required difficulty")
	ErrWrongDifficulty     = errors.New("chainerr: block difficulty does not match the retarget rule")
	ErrBadTimestamp        = errors.New("chainerr: block timestamp is invalid")
	ErrDuplicateTx         = errors.New("chainerr: transaction already known")
	ErrMempoolFull         = errors.New("chainerr: mempool is at capacity")
	ErrSerializationError  = errors.New("chainerr: malformed encoding")
	ErrCancelledByShutdown = errors.New("chainerr: operation cancelled by shutdown")
)

// kindOf maps each sentinel to its Kind for KindOf.
var kindOf = map[error]Kind{
	ErrStoreIO:             KindStoreIO,
	ErrNotFound:            KindNotFound,
	ErrWrongParent:         KindWrongParent,
	ErrWrongHeight:         KindWrongHeight,
	ErrBadMerkle:           KindBadMerkle,
	ErrBadPOW:              KindBadPOW,
	ErrWrongDifficulty:     KindWrongDifficulty,
	ErrBadTimestamp:        KindBadTimestamp,
	ErrDuplicateTx:         KindDuplicateTx,
	ErrMempoolFull:         KindMempoolFull,
	ErrSerializationError:  KindSerializationError,
	ErrCancelledByShutdown: KindCancelledByShutdown,
}

// Error wraps a sentinel with caller-specific detail while preserving
// errors.Is against the sentinel, and so KindOf.
type Error struct {
	sentinel error
	detail   string
}

// New builds an *Error wrapping sentinel with a formatted detail message.
func New(sentinel error, detail string) *Error {
	return &Error{sentinel: sentinel, detail: detail}
}

func (e *Error) Error() string {
	if e.detail == "" {
		return e.sentinel.Error()
	}
	return e.sentinel.Error() + ": " + e.detail
}

func (e *Error) Unwrap() error {
	return e.sentinel
}

// KindOf reports the Kind behind err, walking its Unwrap chain. The
// second return is false when err doesn't wrap one of this package's
// sentinels.
func KindOf(err error) (Kind, bool) {
	for sentinel, kind := range kindOf {
		if errors.Is(err, sentinel) {
			return kind, true
		}
	}
	return 0, false
}
