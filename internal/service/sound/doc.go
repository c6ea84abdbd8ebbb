// Package sound plays the alarm sound by looping an external command.
package sound
