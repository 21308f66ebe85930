package logging

import (
	"bytes"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestCustomOutputForApplicationLog(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{ApplicationLogOutput: &buf})
	msg := "Hello, world!"
	log.Info(msg)
	if !strings.Contains(buf.String(), msg) {
		t.Error("failed to use custom output")
	}
}

func TestCustomPrefixForApplicationLog(t *testing.T) {
	var buf bytes.Buffer
	prefix := "[TEST_PREFIX]"
	Init(Options{
		ApplicationLogOutput: &buf,
		ApplicationLogPrefix: prefix})
	log.Info("Hello, world!")
	got := buf.String()
	if !strings.HasPrefix(got, "[TEST_PREFIX]") || !strings.Contains(got, "Hello, world!") {
		t.Error("failed to use custom prefix")
	}
}

func TestApplicationLogLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	var buf bytes.Buffer
	Init(Options{
		ApplicationLogOutput: &buf,
		ApplicationLogLevel:  log.WarnLevel})
	log.Info("quiet")
	log.Warn("loud")
	got := buf.String()
	if strings.Contains(got, "quiet") || !strings.Contains(got, "loud") {
		t.Errorf("failed to apply level: %q", got)
	}
}

func TestApplicationLogJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		ApplicationLogOutput:      &buf,
		ApplicationLogJSONEnabled: true})
	log.Info("Hello, world!")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"msg":"Hello, world!"`) {
		t.Errorf("failed to use JSON format: %q", buf.String())
	}
}

func TestCustomOutputForAccessLog(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})
	LogAccess(&AccessEntry{StatusCode: 418})
	if !strings.Contains(buf.String(), "418") {
		t.Error("failed to use custom access log output")
	}
}
