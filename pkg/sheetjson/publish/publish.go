// Package publish stores exported payloads, overwriting a stored object only when the
// source document changed since it was written.
package publish

import (
	"context"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
)

// MetadataKey is the object metadata entry carrying the source timestamp of the stored body.
const MetadataKey = "updatedtimestamp"

// Object is one payload to publish.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
	// Timestamp is the source document's last-modified time, in microseconds.
	Timestamp int64
}

// Publisher writes objects gated on staleness.
type Publisher interface {
	// Publish writes obj unless the stored copy is at least as new. It reports whether it wrote.
	Publish(ctx context.Context, obj Object) (bool, error)
}

// shouldWrite reports whether an object with timestamp ts replaces the stored one.
func shouldWrite(stored int64, found bool, ts int64) bool {
	return !found || stored < ts
}

// parseTimestamp reads a stored timestamp. Unparsable values count as absent.
func parseTimestamp(log logrus.FieldLogger, key, raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Ignoring unparsable stored timestamp")
		return 0, false
	}
	return ts, true
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
