package ui

import (
	"encoding/base64"
	"testing"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func loadedDetailView(t *testing.T, backend *fake.Backend, ref resources.Ref) *DetailView {
	t.Helper()
	v := NewDetailView(newTestEnv(t, backend), ref)
	v.SetSize(120, 40)
	_, _ = v.Update(runCmd(t, v.fetch()))
	require.NoError(t, v.err)
	require.NotNil(t, v.obj)
	return v
}

func TestDetailViewOverview(t *testing.T) {
	backend := fake.NewBackend("prod")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"))

	v := loadedDetailView(t, backend, resources.Ref{Cluster: "prod", Type: pods, Namespace: "shop", Name: "api"})

	assert.Equal(t, "pod/api · prod/shop", v.Title())
	assert.Contains(t, v.renderOverview(), "Metadata")
	assert.Contains(t, v.View(), "Overview")
}

func TestDetailViewNotFound(t *testing.T) {
	backend := fake.NewBackend("prod")
	v := NewDetailView(newTestEnv(t, backend), resources.Ref{Cluster: "prod", Type: resources.MustLookup("pods"), Namespace: "shop", Name: "gone"})

	_, _ = v.Update(runCmd(t, v.fetch()))

	assert.True(t, errors.Is(v.err, errors.ErrorNotFound))
	assert.Contains(t, v.View(), "Not Found")
}

func TestDetailViewTabs(t *testing.T) {
	backend := fake.NewBackend("prod")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"))
	v := loadedDetailView(t, backend, resources.Ref{Cluster: "prod", Type: pods, Namespace: "shop", Name: "api"})

	want := []detailTab{tabYAML, tabEvents, tabOverview}
	for _, tab := range want {
		_, _ = v.Update(keyPress("tab"))
		assert.Equal(t, tab, v.tab)
	}
}

func TestDetailViewSecretReveal(t *testing.T) {
	backend := fake.NewBackend("prod")
	secrets := resources.MustLookup("secrets")
	secret := testObject("secrets", "shop", "db")
	require.NoError(t, unstructured.SetNestedStringMap(secret.Object, map[string]string{
		"password": base64.StdEncoding.EncodeToString([]byte("s3cret")),
	}, "data"))
	backend.Add("prod", secrets, secret)
	v := loadedDetailView(t, backend, resources.Ref{Cluster: "prod", Type: secrets, Namespace: "shop", Name: "db"})

	assert.Contains(t, v.renderOverview(), constants.MaskedValue)
	assert.NotContains(t, v.renderOverview(), "s3cret")

	_, _ = v.Update(keyPress("x"))
	assert.True(t, v.reveal)
	assert.Contains(t, v.renderOverview(), "s3cret")
}

func TestDetailViewScaleRevertsOnFailure(t *testing.T) {
	tests := []struct {
		name string
		fail error
		want int64
	}{
		{name: "success", want: 5},
		{name: "failure reverts", fail: errors.FromStatus(403, "forbidden", nil), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := fake.NewBackend("prod")
			deployments := resources.MustLookup("deployments")
			d := testObject("deployments", "shop", "api")
			require.NoError(t, unstructured.SetNestedField(d.Object, int64(3), "spec", "replicas"))
			backend.Add("prod", deployments, d)
			if tt.fail != nil {
				backend.SetError("scale", tt.fail)
			}
			ref := resources.Ref{Cluster: "prod", Type: deployments, Namespace: "shop", Name: "api"}
			v := loadedDetailView(t, backend, ref)

			cmd := v.scale("5")
			replicas, _, _ := unstructured.NestedInt64(v.obj.Object, "spec", "replicas")
			assert.Equal(t, int64(5), replicas)

			_, _ = v.Update(runCmd(t, cmd))
			replicas, _, _ = unstructured.NestedInt64(v.obj.Object, "spec", "replicas")
			assert.Equal(t, tt.want, replicas)
			if tt.fail == nil {
				assert.Equal(t, int32(5), backend.Scaled[ref.String()])
			}
		})
	}
}

func TestValidateReplicas(t *testing.T) {
	assert.NoError(t, validateReplicas("0"))
	assert.NoError(t, validateReplicas(" 12 "))
	assert.Error(t, validateReplicas("-1"))
	assert.Error(t, validateReplicas("many"))
}

func TestRelatedEvents(t *testing.T) {
	event := func(kind, name, reason string) unstructured.Unstructured {
		return unstructured.Unstructured{Object: map[string]any{
			"apiVersion":     "v1",
			"kind":           "Event",
			"metadata":       map[string]any{"name": name + "." + reason, "namespace": "shop"},
			"involvedObject": map[string]any{"kind": kind, "name": name},
			"reason":         reason,
		}}
	}
	list := &resources.List{Items: []unstructured.Unstructured{
		event("Pod", "api", "Scheduled"),
		event("Deployment", "api", "ScalingReplicaSet"),
		event("Pod", "web", "Pulled"),
	}}
	ref := resources.Ref{Cluster: "prod", Type: resources.MustLookup("pods"), Namespace: "shop", Name: "api"}

	got := relatedEvents(list, ref)

	require.Len(t, got, 1)
	assert.Equal(t, "Scheduled", got[0].Reason)
}

func TestDetailViewDeleteGoesBack(t *testing.T) {
	backend := fake.NewBackend("prod")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"))
	v := loadedDetailView(t, backend, resources.Ref{Cluster: "prod", Type: pods, Namespace: "shop", Name: "api"})

	_, cmd := v.Update(keyPress("d"))
	_, confirm := openedModal(t, cmd).Update(keyPress("y"))
	done, ok := runCmd(t, confirm).(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	_, cmd = v.Update(done)
	require.NotNil(t, cmd)
	_, err := backend.Get(t.Context(), done.ref)
	assert.True(t, errors.Is(err, errors.ErrorNotFound))
}
