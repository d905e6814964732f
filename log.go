package mongo

import (
	"github.com/sirupsen/logrus"
)

// log is the package-level structured logger. Worker lifecycle events
// (connect and exit at Debug) and worker socket failures (at Error) go
// through it; authentication and pool waits are not logged.
var log = logrus.WithField("component", "mongo")

func logWorker(replica Replica, slot int) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"host": replica.Host,
		"port": replica.Port,
		"slot": slot,
	})
}
