// Package notification provides the best-effort payment notification relay.
//
// Every persisted sale is announced to an HTTP endpoint with a JSON body {"saleId": ..., "amount": ...}.
// Notify returns immediately; delivery happens on its own goroutine and failures are only logged and counted.
package notification
