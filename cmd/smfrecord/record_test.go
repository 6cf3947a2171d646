package main

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Garik-/smfrec/pkg/seq"
	"github.com/Garik-/smfrec/pkg/smf"
)

const events = `{"tick":0,"type":"noteon","note":60,"velocity":100}
{"tick":384,"raw":"80 3c 00"}
{"type":"end","tick":384}
`

func TestRun(t *testing.T) {
	name := filepath.Join(t.TempDir(), "take.mid")
	cfg := config{options: smf.DefaultOptions(), output: name}

	err := run(context.Background(), cfg, seq.NewJSONSource(strings.NewReader(events)), zap.NewNop())
	require.NoError(t, err)

	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		'M', 'T', 'h', 'd', 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x01, 0x01, 0x80,
		'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x1C,
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08,
		0x00, 0x90, 0x3C, 0x64,
		0x83, 0x00, 0x80, 0x3C, 0x00,
		0x00, 0xFF, 0x2F, 0x00,
	}, data)
}

func TestRun_InvalidOptions(t *testing.T) {
	name := filepath.Join(t.TempDir(), "take.mid")
	o := smf.DefaultOptions()
	o.Frames = 12
	cfg := config{options: o, output: name}

	err := run(context.Background(), cfg, seq.NewJSONSource(strings.NewReader(events)), zap.NewNop())
	assert.ErrorIs(t, err, smf.ErrInvalidFrames)

	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_RemovesFailedOutput(t *testing.T) {
	name := filepath.Join(t.TempDir(), "take.mid")
	cfg := config{options: smf.DefaultOptions(), output: name, idle: -1}

	err := run(context.Background(), cfg, seq.NewJSONSource(strings.NewReader(events)), zap.NewNop())
	assert.ErrorIs(t, err, seq.ErrInvalidTimeout)

	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}

var errClose = errors.New("disk full")

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseOutput(t *testing.T) {
	errRecord := errors.New("record failed")

	c := &closer{err: errClose}
	err := closeOutput(c, nil)
	assert.True(t, c.closed)
	assert.ErrorIs(t, err, errClose)
	assert.Contains(t, err.Error(), "close output")

	// the first error wins
	c = &closer{err: errClose}
	assert.Equal(t, errRecord, closeOutput(c, errRecord))
	assert.True(t, c.closed)

	c = &closer{}
	assert.NoError(t, closeOutput(c, nil))
	assert.True(t, c.closed)
}
