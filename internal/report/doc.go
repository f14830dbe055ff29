// Package report turns the estimation service's JSON answer into a Report.
//
// FromResponse is the only constructor that accepts untrusted input. It either
// returns a Report whose numeric fields are all present and finite, or a
// *apperrors.DecodeError naming the first field that failed; a partially
// decoded Report is never returned. Numbers are taken verbatim from the
// service: nothing here re-derives times or distances.
package report
