// Package clock implements the alarm store: the in-memory alarm list, the
// active alert, the polling loop that raises alerts, and the subscriptions
// presentation layers use to follow changes.
//
// The store moves between two states. While idle, every poll asks the
// scheduler for a due alarm and, on a match, raises an alert and starts the
// player. While ringing, polls only check whether a duration-bound alert has
// run out; dismiss and snooze return the store to idle.
package clock
