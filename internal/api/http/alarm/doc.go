// Package alarm implements the HTTP+JSON transport used by browser front-ends.
//
// Routes are served by a chi router wrapped in CORS handling:
//
//	GET    /healthz
//	GET    /api/alarms            alarms in display order
//	POST   /api/alarms            {"time", "label", "hasDuration", "durationMinutes"}
//	PATCH  /api/alarms/{id}       {"enabled": bool}
//	DELETE /api/alarms/{id}
//	GET    /api/alert
//	POST   /api/alert/snooze
//	POST   /api/alert/dismiss
package alarm
