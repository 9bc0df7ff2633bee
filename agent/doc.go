// Package agent implements the lifecycle state machine shared by every
// decision unit and the model-backed specialization on top of it.
//
// Base provides the full core.Agent contract: initialize-once, single-flight
// message processing with failure containment (handler errors become
// ERROR_RESPONSE envelopes, never raised faults), status snapshots, idempotent
// shutdown and daily metric resets. Concrete agents embed ModelAgent (which
// embeds Base) and supply a Handler with their message logic.
package agent
