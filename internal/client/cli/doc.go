// Package cli implements the ReelSync client commands.
//
// Each invocation runs a single command against the local store: editing the
// account or projects, logging in, running one sync pass, or running the
// periodic scheduler until interrupted. Commands return process exit codes;
// sync maps Success, Retry and Failure to 0, 2 and 3.
package cli
