// Package client is the Sync Protocol Client.
//
// A Client turns one Batch of dirty records into a single request, sends it,
// and classifies the reply as an Outcome:
//
//   - Accepted: the server processed the whole batch.
//   - Rejected: the server answered with success=false. Permanent is set only
//     when the server says retrying cannot help.
//   - TransportFailure: network errors, timeouts, unexpected statuses and
//     unparsable bodies. Cause keeps the error for diagnostics.
//
// Push never returns an error; every failure is folded into the Outcome.
// Two transports exist: HTTPClient (JSON over POST /{api}/sync) and
// GRPCClient (the same document as a google.protobuf.Struct). Both attach the
// bearer token from an auth.TokenSupplier when one is available.
package client
