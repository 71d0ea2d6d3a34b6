package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, NewWithOutput(&bytes.Buffer{}, "warn", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "loud", false).GetLevel())
	assert.Equal(t, logrus.DebugLevel, NewWithOutput(&bytes.Buffer{}, "error", true).GetLevel())
}

func TestNewWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", false)

	log.WithField("page", 2).Info("Skipping page")
	assert.Contains(t, buf.String(), "Skipping page")
	assert.Contains(t, buf.String(), "page=2")
}
