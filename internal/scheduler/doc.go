// Package scheduler decides when alarms fire.
//
// All functions are pure: they read the alarms and the instant they are
// given and never keep state, so the store can call them from its polling
// loop while holding its own lock.
package scheduler
