package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/table"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func init() {
	register(&Page{
		Resource: "serviceaccounts",
		Columns:  []table.Column{numCol("secrets", "SECRETS", 7)},
		cells:    serviceAccountCells,
		template: serviceAccountTemplate,
	})
	for _, name := range []string{"roles", "clusterroles"} {
		register(&Page{
			Resource: name,
			Columns:  []table.Column{numCol("rules", "RULES", 5)},
			cells:    roleCells,
			overview: roleOverview,
		})
	}
	for _, name := range []string{"rolebindings", "clusterrolebindings"} {
		register(&Page{
			Resource: name,
			Columns: []table.Column{
				col("role", "ROLE", 28),
				col("subjects", "SUBJECTS", 30),
			},
			cells: bindingCells,
		})
	}
}

func serviceAccountCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	sa, ok := decode[corev1.ServiceAccount](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{"secrets": count(int64(len(sa.Secrets)))}
}

// Role and ClusterRole share their rules layout
func roleCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	role, ok := decode[rbacv1.ClusterRole](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{"rules": count(int64(len(role.Rules)))}
}

func roleOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	role, ok := decode[rbacv1.ClusterRole](obj)
	if !ok {
		return nil
	}
	var fields []Field
	for i, r := range role.Rules {
		resources := r.Resources
		if len(r.NonResourceURLs) > 0 {
			resources = r.NonResourceURLs
		}
		groups := make([]string, len(r.APIGroups))
		for j, g := range r.APIGroups {
			groups[j] = orDefault(g, "core")
		}
		fields = append(fields, Field{
			"Rules",
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("[%s] %s (%s)", strings.Join(r.Verbs, ","), strings.Join(resources, ","), strings.Join(groups, ",")),
		})
	}
	return fields
}

func bindingCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	b, ok := decode[rbacv1.RoleBinding](obj)
	if !ok {
		return nil
	}
	var subjects []string
	for _, s := range b.Subjects {
		name := s.Name
		if s.Namespace != "" {
			name = s.Namespace + "/" + s.Name
		}
		subjects = append(subjects, s.Kind+":"+name)
	}
	return map[string]table.Cell{
		"role":     table.Text(b.RoleRef.Kind + "/" + b.RoleRef.Name),
		"subjects": table.Text(truncateList(subjects)),
	}
}
