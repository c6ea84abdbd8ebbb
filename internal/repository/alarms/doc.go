// Package alarms persists the alarm list.
//
// The whole list is encoded as one JSON array and stored under a single key
// of a kv.Store. KVRepository implements the Repository interface the alarm
// store depends on.
package alarms
