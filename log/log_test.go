package log

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

var (
	sampleInt      = 3
	sampleLabel    = "1234567890"
	sampleList     = []int64{10, 0, -10}
	sampleDuration = time.Second
	sampleTime     = time.Unix(12345678, 0)

	errSample = errors.New("some error")
)

func doLogs() {
	Infof("generated %d candidates for note %s", sampleInt, sampleLabel)
	Debugw("thresholds computed", "unhealthy", 500, "healthy", 10000)
	Errorf("cannot store selection report: %v", errSample)
	Warnw("various types",
		"list", sampleList,
		"duration", sampleDuration,
		"time", sampleTime,
	)
	Error(errSample)
}

func TestLevels(t *testing.T) {
	c := qt.New(t)
	buf := new(bytes.Buffer)
	logTestWriter = buf
	t.Cleanup(func() { Init(LogLevelError, "stderr", nil) })

	Init(LogLevelWarn, logTestWriterName, nil)
	c.Assert(Level(), qt.Equals, LogLevelWarn)
	buf.Reset()
	Debugw("hidden", "key", 1)
	Infow("hidden too")
	c.Assert(buf.Len(), qt.Equals, 0)
	Warnw("shown", "key", "value")
	c.Assert(buf.String(), qt.Contains, `"message":"shown"`)
	c.Assert(buf.String(), qt.Contains, `"key":"value"`)
}

func TestErrorOutput(t *testing.T) {
	c := qt.New(t)
	logTestWriter = io.Discard
	errBuf := new(bytes.Buffer)
	t.Cleanup(func() { Init(LogLevelError, "stderr", nil) })

	Init(LogLevelDebug, logTestWriterName, errBuf)
	Infow("not an error")
	c.Assert(errBuf.Len(), qt.Equals, 0)
	Errorw(errSample, "failed")
	c.Assert(errBuf.String(), qt.Contains, "some error")
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}
	panicOnInvalidChars = false
	Init("debug", "stderr", nil)
	Debugf("%s", v)
	// should not panic since env var is false. if it panics, test will fail

	// now enable panic and try again: should recover() and never reach t.Errorf()
	panicOnInvalidChars = true
	Init("debug", "stderr", nil)
	defer func() { recover() }()
	Debugf("%s", v)
	t.Errorf("Debugf(%s) should have panicked because of invalid char", v)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard // to not grow a buffer
	Init("debug", logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
