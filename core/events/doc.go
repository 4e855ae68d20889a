// Package events defines the match related events emitted on the event bus.
//
// Available event types:
//   - MatchCompleted: a match request produced a report
//   - MatchFailed: a match request returned an error
//   - MatchPublished: a completed match was forwarded to an external backend
package events
