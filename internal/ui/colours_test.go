package ui_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-kyc-client/internal/ui"
	"github.com/stretchr/testify/require"
)

func TestPainter(t *testing.T) {
	p := ui.ForcedPainter(true)
	require.Equal(t, ui.Green+"VERIFIED"+ui.ResetColor, p.Status("VERIFIED"))
	require.Equal(t, ui.RedInverse+"CRITICAL"+ui.ResetColor, p.Status("CRITICAL"))
	require.Equal(t, "UNKNOWN", p.Status("UNKNOWN"))
	require.Equal(t, ui.Red+"boom"+ui.ResetColor, p.Error("boom"))

	plain := ui.ForcedPainter(false)
	require.Equal(t, "VERIFIED", plain.Status("VERIFIED"))
	require.Equal(t, "ok", plain.Success("ok"))
}

func TestNewPainter_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.Equal(t, "PENDING", ui.NewPainter(&buf).Status("PENDING"))
}
