// Package risk implements the operational risk engine: extreme value
// (GEV) exceedance estimation over a load series, peak duration extraction,
// and the composite NA-aware risk score with its level table.
//
// Everything here is advisory. Nothing in this package changes the hard
// verdict computed by package engine; the verdict is only an input that
// gates the protection term of the score.
package risk
