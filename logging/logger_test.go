package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/zalando/storefront/logging"
)

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	log := logging.New(l)
	for _, ti := range []struct {
		level string
		log   func()
		want  string
	}{
		{"error", func() { log.Error("error") }, "msg=error"},
		{"errorf", func() { log.Errorf("errorf: %s", "foo") }, `msg="errorf: foo"`},
		{"warn", func() { log.Warn("warn") }, "msg=warn"},
		{"warnf", func() { log.Warnf("warnf: %s", "foo") }, `msg="warnf: foo"`},
		{"info", func() { log.Info("info") }, "msg=info"},
		{"infof", func() { log.Infof("infof: %s", "foo") }, `msg="infof: foo"`},
		{"debug", func() { log.Debug("debug") }, "msg=debug"},
		{"debugf", func() { log.Debugf("debugf: %s", "foo") }, `msg="debugf: foo"`},
	} {
		t.Run(ti.level, func(t *testing.T) {
			buf.Reset()
			ti.log()
			s := strings.TrimSpace(buf.String())
			if !strings.HasSuffix(s, ti.want) {
				t.Fatalf("want suffix %q, got %q", ti.want, s)
			}
		})
	}
}

func TestLoggerWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	base := logging.New(l)
	base.WithFields(map[string]any{"source": "file"}).Info("loaded")
	if !strings.Contains(buf.String(), "source=file") {
		t.Fatalf("missing field: %q", buf.String())
	}

	buf.Reset()
	base.Info("plain")
	if strings.Contains(buf.String(), "source=file") {
		t.Fatalf("fields leaked into the parent logger: %q", buf.String())
	}
}
