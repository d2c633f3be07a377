package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-sync/internal/mapping"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/rule"
)

const treeYAML = `
name: Root
kind: assembly
children:
  - name: Wheel
    kind: component
    children:
      - name: WheelPart
        kind: part
        mass: 2.5
`

type workspace struct {
	dir    string
	config string
	tree   string
	target string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	dir := t.TempDir()
	ws := workspace{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		tree:   filepath.Join(dir, "tree.yaml"),
		target: filepath.Join(dir, "iteration.yaml"),
	}

	cfg := "configuration: cli\ndomain: SYS\nlogging:\n  level: error\n  format: console\nbackend:\n  kind: file\n  path: " +
		filepath.Join(dir, "mapping.yaml") + "\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(ws.tree, []byte(treeYAML), 0o644))

	it := model.NewIteration()
	it.Domains = []*model.DomainOfExpertise{{Named: model.NewNamed("Systems", "SYS")}}
	it.ParameterTypes = []*model.ParameterType{
		{Named: model.NewNamed("mass", "m"), Class: model.ClassQuantity, Components: 1},
	}
	require.NoError(t, model.WriteIterationFile(it, ws.target))

	return ws
}

func TestRun_PushCheckPull(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	var stdout, stderr bytes.Buffer

	err := run(ctx, []string{"push", "-config", ws.config, "-tree", ws.tree, "-target", ws.target}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "Mapped 4 elements")

	it, err := model.LoadIterationFile(ws.target)
	require.NoError(t, err)
	_, ok := it.Definition("WheelPart")
	assert.True(t, ok)

	stored, err := mapping.LoadFile(filepath.Join(ws.dir, "mapping.yaml"))
	require.NoError(t, err)
	cfg, ok := stored.Configuration("cli")
	require.True(t, ok)
	assert.NotEmpty(t, cfg.Correspondences)

	stdout.Reset()

	err = run(ctx, []string{"check", "-config", ws.config, "-target", ws.target}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Configuration OK")

	out := filepath.Join(ws.dir, "placeholders.yaml")

	err = run(ctx, []string{"pull", "-config", ws.config, "-tree", ws.tree, "-target", ws.target,
		"-elements", "Root", "-out", out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	placeholders, err := product.LoadPlaceholderFile(out)
	require.NoError(t, err)
	require.Len(t, placeholders, 1)
	assert.Equal(t, product.ActionUpdate, placeholders[0].Action)
	assert.Equal(t, "Root", placeholders[0].Identifier)
}

func TestRun_PushComponentRoot(t *testing.T) {
	ws := newWorkspace(t)
	tree := "name: Wheel\nkind: component\nchildren:\n  - name: WheelPart\n    kind: part\n"
	require.NoError(t, os.WriteFile(ws.tree, []byte(tree), 0o644))

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"push", "-config", ws.config, "-tree", ws.tree, "-target", ws.target}, &stdout, &stderr)
	require.ErrorIs(t, err, rule.ErrNoParentDefinition)
	assert.Contains(t, err.Error(), "wrap it in an assembly")

	it, err := model.LoadIterationFile(ws.target)
	require.NoError(t, err)
	assert.Empty(t, it.Definitions)
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"merge"}},
		{name: "push without tree", args: []string{"push", "-target", "x.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PRODUCT_SYNC_BACKEND", "memory")

			var stdout, stderr bytes.Buffer

			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.ErrorIs(t, err, errUsage)
		})
	}
}
