package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(t *testing.T) Request {
	return Request{
		JobID:     "job1",
		Integrand: "3*x*sin(x)",
		Variable:  "x",
		Lower:     "0",
		Upper:     "pi",
		OutFile:   filepath.Join(t.TempDir(), "job1.mp4"),
	}
}

func TestBuildScriptEmbedsRequest(t *testing.T) {
	r := NewManimRenderer("python3")
	req := testRequest(t)

	script, err := r.buildScript(req)
	require.NoError(t, err)

	assert.Contains(t, script, `"3*x*sin(x)"`)
	assert.Contains(t, script, `"x"`)
	assert.Contains(t, script, `"0"`)
	assert.Contains(t, script, `"pi"`)
	assert.Contains(t, script, req.OutFile)
	assert.NotContains(t, script, "<<")
}

func TestRenderReportsCommandFailure(t *testing.T) {
	r := NewManimRenderer("false")

	err := r.Render(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render pipeline failed")
}

func TestRenderReportsMissingArtifact(t *testing.T) {
	r := NewManimRenderer("true")

	err := r.Render(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "produced no artifact")
}

func TestRenderSucceedsWhenArtifactProduced(t *testing.T) {
	r := NewManimRenderer("true")
	req := testRequest(t)
	require.NoError(t, os.WriteFile(req.OutFile, []byte("video"), 0o644))

	assert.NoError(t, r.Render(context.Background(), req))
}

func TestRenderHonorsCancelledContext(t *testing.T) {
	r := NewManimRenderer("true")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Render(ctx, testRequest(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render interrupted")
}

func TestFuncAdapter(t *testing.T) {
	called := false
	f := Func(func(_ context.Context, _ Request) error {
		called = true
		return nil
	})

	require.NoError(t, f.Render(context.Background(), Request{}))
	assert.True(t, called)
}

func TestNewManimRendererDefaultsBinary(t *testing.T) {
	r := NewManimRenderer("")
	assert.Equal(t, "python3", r.pythonBin)
}
