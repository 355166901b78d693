// Package engine implements the hard engineering checks for a distribution
// asset: rated and short-circuit current, breaker breaking capacity, cable
// ampacity sizing, adiabatic thermal withstand and the combined verdict.
//
// # Reading Order
//
//   - status.go: Status, Reason and the sentinel errors every judgement uses
//   - electrical.go: RatedCurrent, ShortCircuitCurrent, JudgeBreaker
//   - cable.go: CableSpec and CableResolver (AUTO/MANUAL sizing, hard and operational runs)
//   - thermal.go: ThermalChecker (I*sqrt(t) <= k*S)
//   - protection.go: inverse-time curve, protection margin, clearing-time policy
//   - verdict.go: Classify, the PASS/FAIL/NEED_MORE state machine
//
// Every function is pure. Negative results are returned as data
// (INADEQUATE, INDETERMINATE) and never as panics. Reference data comes from
// an injected catalog.Catalog; see engine/catalog.
//
// The operational risk engine lives in engine/risk and the orchestration of a
// full assessment in engine/assessment.
package engine
