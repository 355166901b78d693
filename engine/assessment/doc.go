// Package assessment orchestrates one asset assessment: the hard engineering
// checks with their binding verdict, the advisory operational cable run, and
// the operational risk analysis.
//
// Collaborators that do I/O (ambient source, asset registry, history store)
// are interfaces used by Service before and after the pure Assess call.
package assessment
