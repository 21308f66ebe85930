package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestMultiFlagSet(t *testing.T) {
	f := &multiFlag{}
	require.NoError(t, f.Set("routes/a.yaml"))
	require.NoError(t, f.Set("routes/b.yaml"))
	assert.Equal(t, multiFlag{"routes/a.yaml", "routes/b.yaml"}, *f)
	assert.Equal(t, "routes/a.yaml routes/b.yaml", f.String())
}

func TestMultiFlagYaml(t *testing.T) {
	f := &multiFlag{}
	require.NoError(t, yaml.Unmarshal([]byte("[routes/a.yaml, routes/b.yaml]"), f))
	assert.Equal(t, multiFlag{"routes/a.yaml", "routes/b.yaml"}, *f)
}

func TestMultiFlagYamlErr(t *testing.T) {
	m := &multiFlag{}
	err := yaml.Unmarshal([]byte(`-foo=bar`), m)
	require.Error(t, err, "Failed to get error on wrong yaml input")
}

func TestMultiFlagRejectsEmptyFile(t *testing.T) {
	f := &multiFlag{}
	assert.Error(t, f.Set(" "))
	assert.Error(t, yaml.Unmarshal([]byte(`[routes/a.yaml, ""]`), f))
}

func TestMultiFlagTrimsFile(t *testing.T) {
	f := &multiFlag{}
	require.NoError(t, f.Set(" routes/a.yaml "))
	assert.Equal(t, multiFlag{"routes/a.yaml"}, *f)
}
