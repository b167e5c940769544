// Package analytics derives completion statistics from a snapshot of habits.
//
// Every function is pure: callers pass the habits they fetched and an explicit
// "now" whose location defines the local calendar day. Nothing is cached between
// calls, so each render recomputes from the latest snapshot.
package analytics
