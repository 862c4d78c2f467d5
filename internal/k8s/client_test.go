package k8s

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katyella/kconsole/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
current-context: dev
clusters:
- name: dev-cluster
  cluster:
    server: https://127.0.0.1:6443
- name: prod-cluster
  cluster:
    server: https://10.0.0.1:6443
users:
- name: admin
  user:
    token: secret
contexts:
- name: dev
  context:
    cluster: dev-cluster
    user: admin
    namespace: team-a
- name: prod
  context:
    cluster: prod-cluster
    user: admin
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewClientFactory(t *testing.T) {
	factory, err := NewClientFactory(writeKubeconfig(t, testKubeconfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"dev", "prod"}, factory.Contexts())
	assert.Equal(t, "dev", factory.CurrentContext())
}

func TestClientFactory_For(t *testing.T) {
	factory, err := NewClientFactory(writeKubeconfig(t, testKubeconfig))
	require.NoError(t, err)

	tests := []struct {
		name      string
		context   string
		namespace string
		host      string
	}{
		{name: "current context", context: "", namespace: "team-a", host: "https://127.0.0.1:6443"},
		{name: "named context", context: "prod", namespace: "default", host: "https://10.0.0.1:6443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients, err := factory.For(tt.context)
			require.NoError(t, err)
			assert.Equal(t, tt.namespace, clients.Namespace)
			assert.Equal(t, tt.host, clients.Config.Host)
			assert.NotNil(t, clients.Dynamic)
			assert.NotNil(t, clients.Projects)
			assert.NotNil(t, clients.Detector)

			again, err := factory.For(tt.context)
			require.NoError(t, err)
			assert.Same(t, clients, again)
		})
	}
}

func TestClientFactory_UnknownContext(t *testing.T) {
	factory, err := NewClientFactory(writeKubeconfig(t, testKubeconfig))
	require.NoError(t, err)

	_, err = factory.For("staging")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorNotFound))
}

func TestNewClientFactory_Errors(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	t.Setenv("KUBERNETES_SERVICE_PORT", "")

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent")},
		{name: "no contexts", path: writeKubeconfig(t, "apiVersion: v1\nkind: Config\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClientFactory(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrorConfiguration))
		})
	}
}
