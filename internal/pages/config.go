package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/table"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func init() {
	register(&Page{
		Resource: "configmaps",
		Columns:  []table.Column{numCol("data", "DATA", 5)},
		cells:    configMapCells,
		overview: configMapOverview,
		template: configMapTemplate,
	})
	register(&Page{
		Resource: "secrets",
		Columns: []table.Column{
			col("type", "TYPE", 28),
			numCol("data", "DATA", 5),
			col("expires", "EXPIRES", 12),
		},
		cells:    secretCells,
		overview: secretOverview,
		template: secretTemplate,
	})
}

func configMapCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	cm, ok := decode[corev1.ConfigMap](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{"data": count(int64(len(cm.Data) + len(cm.BinaryData)))}
}

func configMapOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	cm, ok := decode[corev1.ConfigMap](obj)
	if !ok {
		return nil
	}
	var fields []Field
	for _, k := range sortedKeys(cm.Data) {
		fields = append(fields, Field{"Data", k, format.Truncate(firstLine(cm.Data[k]), 80)})
	}
	for _, k := range sortedKeys(cm.BinaryData) {
		fields = append(fields, Field{"Binary Data", k, fmt.Sprintf("%d bytes", len(cm.BinaryData[k]))})
	}
	return fields
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func secretCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	secretType, _, _ := unstructured.NestedString(obj.Object, "type")
	data, _, _ := unstructured.NestedMap(obj.Object, "data")
	cells := map[string]table.Cell{
		"type":    table.Text(orDefault(secretType, string(corev1.SecretTypeOpaque))),
		"data":    count(int64(len(data))),
		"expires": {Text: ""},
	}
	if cert, ok := EarliestExpiry(SecretCertificates(obj)); ok {
		text := cert.NotAfter.UTC().Format("2006-01-02")
		if cert.Status(now) != constants.CertStatusValid {
			text += " (" + cert.Status(now) + ")"
		}
		cells["expires"] = table.Cell{Text: text, Sort: cert.NotAfter}
	}
	return cells
}

func secretOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	var fields []Field
	for _, e := range SecretEntries(obj, false) {
		fields = append(fields, Field{"Data", e.Key, fmt.Sprintf("%d bytes", e.Size)})
	}
	for _, c := range SecretCertificates(obj) {
		section := "Certificate " + c.Key
		fields = append(fields,
			Field{section, "Subject", c.Subject},
			Field{section, "Issuer", c.Issuer},
			Field{section, "DNS Names", orNone(strings.Join(c.DNSNames, ", "))},
			Field{section, "Not After", c.NotAfter.UTC().Format(time.RFC3339)},
			Field{section, "Status", fmt.Sprintf("%s (%d days)", c.Status(now), c.DaysLeft(now))},
		)
	}
	return fields
}
