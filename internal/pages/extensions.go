package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/table"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	admissionregistrationv1 "k8s.io/api/admissionregistration/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func init() {
	register(&Page{
		Resource: "customresourcedefinitions",
		Columns: []table.Column{
			col("group", "GROUP", 24),
			col("versions", "VERSIONS", 14),
			col("scope", "SCOPE", 10),
			col("kind", "KIND", 20),
		},
		cells:    crdCells,
		overview: crdOverview,
	})
	register(&Page{
		Resource: "mutatingwebhookconfigurations",
		Columns:  []table.Column{numCol("webhooks", "WEBHOOKS", 8)},
		cells:    webhookCells,
		overview: mutatingWebhookOverview,
	})
	register(&Page{
		Resource: "validatingwebhookconfigurations",
		Columns:  []table.Column{numCol("webhooks", "WEBHOOKS", 8)},
		cells:    webhookCells,
		overview: validatingWebhookOverview,
	})
	register(&Page{
		Resource: "clusterserviceversions",
		Columns: []table.Column{
			col("displayname", "DISPLAY NAME", 28),
			col("version", "VERSION", 10),
			col("phase", "PHASE", 10),
		},
		cells: csvCells,
	})
}

type crdVersion struct {
	name    string
	served  bool
	storage bool
}

// CRDs are read without the apiextensions types
func crdVersions(obj *unstructured.Unstructured) []crdVersion {
	raw, _, _ := unstructured.NestedSlice(obj.Object, "spec", "versions")
	var out []crdVersion
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _, _ := unstructured.NestedString(m, "name")
		served, _, _ := unstructured.NestedBool(m, "served")
		storage, _, _ := unstructured.NestedBool(m, "storage")
		out = append(out, crdVersion{name, served, storage})
	}
	return out
}

func crdCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	group, _, _ := unstructured.NestedString(obj.Object, "spec", "group")
	scope, _, _ := unstructured.NestedString(obj.Object, "spec", "scope")
	kind, _, _ := unstructured.NestedString(obj.Object, "spec", "names", "kind")
	var names []string
	for _, v := range crdVersions(obj) {
		names = append(names, v.name)
	}
	return map[string]table.Cell{
		"group":    table.Text(group),
		"versions": table.Text(strings.Join(names, ",")),
		"scope":    table.Text(scope),
		"kind":     table.Text(kind),
	}
}

func crdOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	plural, _, _ := unstructured.NestedString(obj.Object, "spec", "names", "plural")
	shortNames, _, _ := unstructured.NestedStringSlice(obj.Object, "spec", "names", "shortNames")
	fields := []Field{
		{"Names", "Plural", plural},
		{"Names", "Short Names", orNone(strings.Join(shortNames, ","))},
	}
	for _, v := range crdVersions(obj) {
		var flags []string
		if v.served {
			flags = append(flags, "served")
		}
		if v.storage {
			flags = append(flags, "storage")
		}
		fields = append(fields, Field{"Versions", v.name, orNone(strings.Join(flags, ", "))})
	}
	return fields
}

func webhookCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	hooks, _, _ := unstructured.NestedSlice(obj.Object, "webhooks")
	return map[string]table.Cell{"webhooks": count(int64(len(hooks)))}
}

func clientConfig(cc admissionregistrationv1.WebhookClientConfig) string {
	if cc.URL != nil {
		return *cc.URL
	}
	if svc := cc.Service; svc != nil {
		s := "service " + svc.Namespace + "/" + svc.Name
		if svc.Port != nil {
			s += fmt.Sprintf(":%d", *svc.Port)
		}
		if svc.Path != nil {
			s += *svc.Path
		}
		return s
	}
	return "<none>"
}

func webhookFields(name string, cc admissionregistrationv1.WebhookClientConfig, policy *admissionregistrationv1.FailurePolicyType, sideEffects *admissionregistrationv1.SideEffectClass, timeout *int32) []Field {
	section := "Webhook " + name
	fields := []Field{{section, "Client", clientConfig(cc)}}
	if policy != nil {
		fields = append(fields, Field{section, "Failure Policy", string(*policy)})
	}
	if sideEffects != nil {
		fields = append(fields, Field{section, "Side Effects", string(*sideEffects)})
	}
	if timeout != nil {
		fields = append(fields, Field{section, "Timeout", fmt.Sprintf("%ds", *timeout)})
	}
	return fields
}

func mutatingWebhookOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	cfg, ok := decode[admissionregistrationv1.MutatingWebhookConfiguration](obj)
	if !ok {
		return nil
	}
	var fields []Field
	for _, w := range cfg.Webhooks {
		fields = append(fields, webhookFields(w.Name, w.ClientConfig, w.FailurePolicy, w.SideEffects, w.TimeoutSeconds)...)
		if w.ReinvocationPolicy != nil {
			fields = append(fields, Field{"Webhook " + w.Name, "Reinvocation", string(*w.ReinvocationPolicy)})
		}
	}
	return fields
}

func validatingWebhookOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	cfg, ok := decode[admissionregistrationv1.ValidatingWebhookConfiguration](obj)
	if !ok {
		return nil
	}
	var fields []Field
	for _, w := range cfg.Webhooks {
		fields = append(fields, webhookFields(w.Name, w.ClientConfig, w.FailurePolicy, w.SideEffects, w.TimeoutSeconds)...)
	}
	return fields
}

func csvCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	csv, ok := decode[operatorsv1alpha1.ClusterServiceVersion](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"displayname": table.Text(csv.Spec.DisplayName),
		"version":     table.Text(csv.Spec.Version.String()),
		"phase":       table.Text(string(csv.Status.Phase)),
	}
}
