package ui

import (
	"testing"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestEditModalKeepsSecretData(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	secrets := resources.MustLookup("secrets")
	obj := testObject("secrets", "shop", "db")
	require.NoError(t, unstructured.SetNestedStringMap(obj.Object, map[string]string{"password": "aHVudGVyMg=="}, "data"))

	m, err := env.editModal(1, resources.RefFor("prod", secrets, obj), obj)
	require.NoError(t, err)
	editor, ok := m.(*EditorModal)
	require.True(t, ok)

	assert.Contains(t, editor.Value(), "password: aHVudGVyMg==")
	assert.NotContains(t, editor.Value(), constants.MaskedValue)
	assert.NotContains(t, editor.Value(), "hunter2")
}
