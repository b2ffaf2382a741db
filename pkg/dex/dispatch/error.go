package dispatch

import "errors"

var (
	errNoCredential        = errors.New("no active key configured for account")
	errBroadcastRejected   = errors.New("broadcast returned no transaction id")
	errSettlementExhausted = errors.New("all settlement mechanisms exhausted")
)
