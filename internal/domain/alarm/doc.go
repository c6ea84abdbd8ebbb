// Package alarm contains the core domain types of the alarm clock.
//
// It defines Alarm (a daily trigger) and Alert (the ringing state an alarm
// produces), together with pure helpers for formatting, identifiers, input
// validation and display ordering.
package alarm
