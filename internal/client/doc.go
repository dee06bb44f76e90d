// Package client implements the stateful client that owns a worker
// process and speaks the line protocol with it.
//
// A Client wires four pieces together: the subprocess transport, the
// correlator that matches responses to in-flight calls, the router that
// is the sole reader of the worker's stdout, and the event sink that fans
// worker events out to subscribers. Calls block their caller; events flow
// independently of any call.
//
// Clients are single-use: Start once, Close once, create a new one to
// reconnect.
package client
