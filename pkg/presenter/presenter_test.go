package presenter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestErrorOutput(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("source not found"), "Failed to install resources")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] Failed to install resources: source not found")
}

func TestErrorWithoutContext(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "")

	assert.Contains(t, errOut.String(), "[ERROR] boom")
}

func TestErrorNil(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(nil, "ignored")

	assert.Empty(t, errOut.String())
}

func TestMessageKinds(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("resources installed")
	p.Warning("no active target file")
	p.Info("3 documents available")

	output := out.String()
	assert.Contains(t, output, "✓ resources installed")
	assert.Contains(t, output, "⚠ no active target file")
	assert.Contains(t, output, "3 documents available")
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Section("Resources")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "Resources", lines[0])
	assert.Equal(t, strings.Repeat("-", len("Resources")), lines[1])
}

func TestQuietMode(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()
	assert.Empty(t, out.String())

	// Errors are never suppressed.
	p.Error(errors.New("still shown"), "")
	assert.Contains(t, errOut.String(), "still shown")
}

func TestDefaultPresenter(t *testing.T) {
	var out, errOut bytes.Buffer
	orig := defaultPresenter
	defaultPresenter = NewWithOptions(&out, &errOut, ColorNever)
	t.Cleanup(func() { defaultPresenter = orig })

	Success("resources installed")
	Separator()

	SetQuiet(true)
	assert.True(t, IsQuiet())
	Warning("hidden")

	output := out.String()
	assert.Contains(t, output, "✓ resources installed")
	assert.Contains(t, output, strings.Repeat("-", 60))
	assert.NotContains(t, output, "hidden")
}
