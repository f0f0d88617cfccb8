// Package alerts implements the alert engine: a per-(bin, kind) state
// machine that creates, escalates, and resolves alerts as bins cross the
// configured fill, temperature, and weight bounds. At most one open alert
// exists per (bin, kind) pair; worsening conditions escalate the open alert
// in place, and escalation is monotonic. Every real transition is appended
// to an audit history and delivered to configured webhook targets
// (Slack, Teams, or generic HTTP).
package alerts
