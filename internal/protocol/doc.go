// Package protocol implements request/response correlation for a worker process.
//
// The protocol package provides two cooperating pieces. The Correlator owns
// the pending-call table: it assigns process-unique request ids and hands
// each call a one-shot outcome channel. The Router is the single reader
// task: it drains the worker's output lines, classifies each one, settles
// responses against the Correlator, and publishes events to a sink.
//
// Exactly one of these settles every call:
//   - a response arrives for its id
//   - the caller abandons it (timeout or cancellation) and drops the entry
//   - the worker's stream closes and the table is swept
//
// Example usage:
//
//	corr := protocol.NewCorrelator(log)
//	router := protocol.NewRouter(log, corr, sink, nil)
//
//	lines, errs := worker.Lines(ctx)
//	router.Start(ctx, lines, errs)
//
//	id, await := corr.Issue()
//	// encode and send {id, method, params}, then wait on await
package protocol
