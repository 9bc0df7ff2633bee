// Package dispatch routes message envelopes to registered agents. It owns
// agent registration by role, fan-out delivery for the broadcast sentinel,
// priority-ordered batch delivery, and lifecycle fan-out (initialize,
// shutdown, daily metric resets). Agents never see scheduling concerns;
// priority is honored here and only here.
package dispatch
