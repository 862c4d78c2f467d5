package pages

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func toUnstructured(t *testing.T, obj runtime.Object, apiVersion, kind string) *unstructured.Unstructured {
	t.Helper()
	m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	require.NoError(t, err)
	u := &unstructured.Unstructured{Object: m}
	u.SetAPIVersion(apiVersion)
	u.SetKind(kind)
	return u
}

func selfSigned(t *testing.T, cn string, notAfter time.Time) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{cn},
		NotBefore:    notAfter.Add(-365 * 24 * time.Hour),
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestPodStatus(t *testing.T) {
	deleted := metav1.NewTime(now)
	tests := []struct {
		name string
		pod  corev1.Pod
		want string
	}{
		{
			name: "phase",
			pod:  corev1.Pod{Status: corev1.PodStatus{Phase: corev1.PodRunning}},
			want: "Running",
		},
		{
			name: "terminating",
			pod: corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{DeletionTimestamp: &deleted},
				Status:     corev1.PodStatus{Phase: corev1.PodRunning},
			},
			want: "Terminating",
		},
		{
			name: "waiting reason",
			pod: corev1.Pod{Status: corev1.PodStatus{
				Phase: corev1.PodRunning,
				ContainerStatuses: []corev1.ContainerStatus{{
					State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff"}},
				}},
			}},
			want: "CrashLoopBackOff",
		},
		{
			name: "init container failure",
			pod: corev1.Pod{Status: corev1.PodStatus{
				Phase: corev1.PodPending,
				InitContainerStatuses: []corev1.ContainerStatus{{
					State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 1}},
				}},
			}},
			want: "Init:Error",
		},
		{
			name: "no phase",
			pod:  corev1.Pod{},
			want: "Unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PodStatus(&tt.pod))
		})
	}
}

func TestNodeStatusAndRoles(t *testing.T) {
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{
			"node-role.kubernetes.io/worker":        "",
			"node-role.kubernetes.io/control-plane": "",
			"kubernetes.io/os":                      "linux",
		}},
		Spec: corev1.NodeSpec{Unschedulable: true},
		Status: corev1.NodeStatus{Conditions: []corev1.NodeCondition{
			{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
		}},
	}
	assert.Equal(t, "Ready,SchedulingDisabled", NodeStatus(node))
	assert.Equal(t, "control-plane,worker", NodeRoles(node))
	assert.Equal(t, "<none>", NodeRoles(&corev1.Node{}))
}

func TestPodRow(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "web-1",
			Namespace:         "shop",
			UID:               "uid-1",
			CreationTimestamp: metav1.NewTime(now.Add(-2 * time.Hour)),
		},
		Spec: corev1.PodSpec{
			NodeName:   "node-a",
			Containers: []corev1.Container{{Name: "app"}, {Name: "sidecar"}},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			PodIP: "10.0.0.7",
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "app", Ready: true, RestartCount: 3},
				{Name: "sidecar", RestartCount: 1},
			},
		},
	}
	obj := toUnstructured(t, pod, "v1", "Pod")
	page := For(resources.MustLookup("pods"))

	row := page.Row("prod", obj, now)
	assert.Equal(t, "prod/uid-1", row.ID)
	assert.Equal(t, "web-1", row.Text(table.KeyName))
	assert.Equal(t, "shop", row.Text(table.KeyNamespace))
	assert.Equal(t, "1/2", row.Text("ready"))
	assert.Equal(t, "Running", row.Text("status"))
	assert.Equal(t, "4", row.Text("restarts"))
	assert.Equal(t, "node-a", row.Text("node"))
	assert.Equal(t, "10.0.0.7", row.Text("ip"))
	assert.Equal(t, "2h", row.Text(table.KeyAge))

	cols := page.TableColumns(true, true)
	require.NotEmpty(t, cols)
	assert.Equal(t, table.KeyName, cols[0].Key)
	assert.Equal(t, table.KeyNamespace, cols[1].Key)
	assert.Equal(t, table.KeyCluster, cols[2].Key)
	assert.Equal(t, table.KeyAge, cols[len(cols)-1].Key)
	assert.Len(t, page.TableColumns(false, false), len(page.Columns)+2)

	fields := page.Overview(obj, now)
	require.NotEmpty(t, fields)
	assert.Equal(t, Field{"Metadata", "Name", "web-1"}, fields[0])
}

func TestForCustomResource(t *testing.T) {
	rt, err := resources.ParseCustom("widgets.example.com")
	require.NoError(t, err)
	page := For(rt)
	assert.Empty(t, page.Columns)

	obj := &unstructured.Unstructured{}
	obj.SetName("w1")
	obj.SetNamespace("ns")
	row := page.Row("dev", obj, now)
	assert.Equal(t, "dev/ns/w1", row.ID)
	assert.Equal(t, "w1", row.Text(table.KeyName))
}

func TestRegisteredPagesHaveKnownTypes(t *testing.T) {
	for _, name := range Registered() {
		_, ok := resources.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestCreateTemplate(t *testing.T) {
	tests := []struct {
		name      string
		resource  string
		namespace string
		contains  []string
	}{
		{
			name:      "deployment",
			resource:  "deployments",
			namespace: "shop",
			contains:  []string{"kind: Deployment", "namespace: shop"},
		},
		{
			name:     "default namespace",
			resource: "configmaps",
			contains: []string{"kind: ConfigMap", "namespace: " + constants.DefaultNamespace},
		},
		{
			name:      "cluster scoped",
			resource:  "namespaces",
			namespace: "shop",
			contains:  []string{"kind: Namespace"},
		},
		{
			name:      "generic",
			resource:  "widgets.example.com/v1beta1",
			namespace: "lab",
			contains:  []string{"apiVersion: example.com/v1beta1", "kind: Widgets", "namespace: lab"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := resources.MustLookup(tt.resource)
			got := For(rt).CreateTemplate(rt, tt.namespace)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, namespacePlaceholder)

			obj, err := FromYAML(got)
			require.NoError(t, err)
			assert.Equal(t, "example", obj.GetName())
		})
	}
}

func TestCertificates(t *testing.T) {
	valid := selfSigned(t, "shop.example.com", now.Add(90*24*time.Hour))
	expiring := selfSigned(t, "old.example.com", now.Add(10*24*time.Hour))

	certs, err := ParseCertificates(append(valid, expiring...))
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, "shop.example.com", certs[0].Subject)
	assert.Equal(t, []string{"shop.example.com"}, certs[0].DNSNames)
	assert.Equal(t, constants.CertStatusValid, certs[0].Status(now))
	assert.Equal(t, constants.CertStatusExpiring, certs[1].Status(now))
	assert.Equal(t, constants.CertStatusExpired, certs[1].Status(now.Add(11*24*time.Hour)))
	assert.Equal(t, 10, certs[1].DaysLeft(now))

	first, ok := EarliestExpiry(certs)
	require.True(t, ok)
	assert.Equal(t, "old.example.com", first.Subject)

	_, err = ParseCertificates([]byte("not pem"))
	assert.Error(t, err)
}

func tlsSecret(t *testing.T, cert []byte) *unstructured.Unstructured {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "shop-tls", Namespace: "shop"},
		Type:       corev1.SecretTypeTLS,
		Data: map[string][]byte{
			"tls.crt":  cert,
			"tls.key":  []byte("key-material"),
			"blob.bin": {0xff, 0xfe, 0x00},
		},
	}
	obj := toUnstructured(t, secret, "v1", "Secret")
	// Typed secret data converts to base64 strings
	data, _, _ := unstructured.NestedStringMap(obj.Object, "data")
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("key-material")), data["tls.key"])
	return obj
}

func TestSecretPage(t *testing.T) {
	obj := tlsSecret(t, selfSigned(t, "shop.example.com", now.Add(20*24*time.Hour)))

	certs := SecretCertificates(obj)
	require.Len(t, certs, 1)
	assert.Equal(t, "tls.crt", certs[0].Key)

	row := For(resources.MustLookup("secrets")).Row("dev", obj, now)
	assert.Equal(t, SecretTypeTLS, row.Text("type"))
	assert.Equal(t, "3", row.Text("data"))
	assert.Contains(t, row.Text("expires"), constants.CertStatusExpiring)

	masked := SecretEntries(obj, false)
	require.Len(t, masked, 3)
	for _, e := range masked {
		assert.Equal(t, constants.MaskedValue, e.Value, e.Key)
	}

	revealed := SecretEntries(obj, true)
	byKey := map[string]SecretEntry{}
	for _, e := range revealed {
		byKey[e.Key] = e
	}
	assert.Equal(t, "key-material", byKey["tls.key"].Value)
	assert.True(t, byKey["blob.bin"].Binary)
	assert.Equal(t, "<binary 3 bytes>", byKey["blob.bin"].Value)
}

func TestMaskSecret(t *testing.T) {
	obj := tlsSecret(t, selfSigned(t, "a.example.com", now.Add(time.Hour)))
	require.NoError(t, unstructured.SetNestedStringMap(obj.Object, map[string]string{"plain": "text"}, "stringData"))

	masked := MaskSecret(obj)
	data, _, _ := unstructured.NestedStringMap(masked.Object, "data")
	for k, v := range data {
		assert.Equal(t, constants.MaskedValue, v, k)
	}
	plain, _, _ := unstructured.NestedString(masked.Object, "stringData", "plain")
	assert.Equal(t, constants.MaskedValue, plain)

	orig, _, _ := unstructured.NestedString(obj.Object, "stringData", "plain")
	assert.Equal(t, "text", orig)

	cm := &unstructured.Unstructured{}
	cm.SetAPIVersion("v1")
	cm.SetKind("ConfigMap")
	assert.Same(t, cm, MaskSecret(cm))
}

func TestToYAML(t *testing.T) {
	obj := tlsSecret(t, selfSigned(t, "a.example.com", now.Add(time.Hour)))
	obj.SetManagedFields([]metav1.ManagedFieldsEntry{{Manager: "kubectl"}})

	out, err := ToYAML(obj, false)
	require.NoError(t, err)
	assert.NotContains(t, out, "managedFields")
	assert.Contains(t, out, constants.MaskedValue)
	assert.Contains(t, out, "name: shop-tls")

	revealed, err := ToYAML(obj, true)
	require.NoError(t, err)
	assert.NotContains(t, revealed, constants.MaskedValue)
	assert.Len(t, obj.GetManagedFields(), 1)
}

func TestFromYAML(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: cfg\n"},
		{name: "broken yaml", text: "apiVersion: [v1", wantErr: true},
		{name: "missing kind", text: "apiVersion: v1\nmetadata:\n  name: cfg\n", wantErr: true},
		{name: "missing name", text: "apiVersion: v1\nkind: ConfigMap\nmetadata: {}\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := FromYAML(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrorValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "cfg", obj.GetName())
		})
	}
}

func TestConfigMapOverviewOrder(t *testing.T) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "assets", Namespace: "shop"},
		Data:       map[string]string{"z.conf": "z=1", "a.conf": "a=1\nb=2"},
		BinaryData: map[string][]byte{"c.bin": {1}, "a.bin": {1, 2}, "b.bin": {1, 2, 3}},
	}
	obj := toUnstructured(t, cm, "v1", "ConfigMap")
	page := For(resources.MustLookup("configmaps"))

	for range 5 {
		var data, binary []string
		for _, f := range page.Overview(obj, now) {
			switch f.Section {
			case "Data":
				data = append(data, f.Label+"="+f.Value)
			case "Binary Data":
				binary = append(binary, f.Label+"="+f.Value)
			}
		}
		assert.Equal(t, []string{"a.conf=a=1 ...", "z.conf=z=1"}, data)
		assert.Equal(t, []string{"a.bin=2 bytes", "b.bin=3 bytes", "c.bin=1 bytes"}, binary)
	}
}
