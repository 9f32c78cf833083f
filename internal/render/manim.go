package render

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed scene.py.tmpl
var sceneSrc string

// The scene template uses << >> delimiters so the python braces inside it
// pass through untouched.
var sceneTmpl = template.Must(template.New("scene").Delims("<<", ">>").Parse(sceneSrc))

// outputTail bounds how much pipeline output is carried into an error.
const outputTail = 500

// ManimRenderer renders integral solution videos by generating a python
// scene script and running it out of process.
type ManimRenderer struct {
	pythonBin string
}

// NewManimRenderer creates a renderer that runs scene scripts with the given
// python interpreter. An empty binary falls back to "python3".
func NewManimRenderer(pythonBin string) *ManimRenderer {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	return &ManimRenderer{pythonBin: pythonBin}
}

// Render generates the scene script for the request, runs it, and verifies
// the artifact was produced.
func (r *ManimRenderer) Render(ctx context.Context, req Request) error {
	if err := os.MkdirAll(filepath.Dir(req.OutFile), 0o755); err != nil {
		return fmt.Errorf("preparing video directory: %w", err)
	}

	script, err := r.buildScript(req)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp("", "mathvis-scene-*.py")
	if err != nil {
		return fmt.Errorf("creating scene script: %w", err)
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()
	if _, err := file.WriteString(script); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing scene script: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing scene script: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.pythonBin, file.Name())
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("render interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("render pipeline failed: %v: %s", err, tail(output.Bytes(), outputTail))
	}

	if _, err := os.Stat(req.OutFile); err != nil {
		return fmt.Errorf("render pipeline produced no artifact at %s", req.OutFile)
	}
	return nil
}

func (r *ManimRenderer) buildScript(req Request) (string, error) {
	var buf bytes.Buffer
	if err := sceneTmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("generating scene script: %w", err)
	}
	return buf.String(), nil
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
