// Package engine contains the daily tick driver and the monthly pipeline of
// the legislature simulation.
//
// ARCHITECTURAL RULE: a tick never mutates the campaign it is given. It
// works on a deep clone and returns it with the effects it produced; on any
// error the caller keeps the prior campaign.
package engine
