// Package syncer contains the sync Orchestrator.
//
// One call to Run walks Idle → Gating → Batching → Pushing → Reconciling and
// ends in a terminal Result. Runs share no state: each starts at Idle and
// reads what it needs from the Store. The Orchestrator holds no lock and does
// not time retries; callers serialize runs and schedule backoff.
//
// Dirty records are committed clean only after an Accepted reply, so an
// interrupted run leaves every record dirty and safe to push again.
package syncer
