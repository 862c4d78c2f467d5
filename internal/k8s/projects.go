package k8s

import (
	"context"
	"sort"

	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	projectv1 "github.com/openshift/api/project/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// listProjects serves the namespaces list from OpenShift projects, which
// only include namespaces the user may see
func (b *Backend) listProjects(ctx context.Context, c *ClusterClients, opts resources.ListOptions) (*resources.List, error) {
	projects, err := c.Projects.ProjectV1().Projects().List(ctx, metav1.ListOptions{
		LabelSelector: opts.LabelSelector,
		FieldSelector: opts.FieldSelector,
	})
	if err != nil {
		return nil, errors.FromKubernetes("list projects", err)
	}

	sort.Slice(projects.Items, func(i, j int) bool {
		return projects.Items[i].Name < projects.Items[j].Name
	})

	items := make([]unstructured.Unstructured, 0, len(projects.Items))
	for i := range projects.Items {
		obj, err := projectToUnstructured(&projects.Items[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *obj)
	}
	return &resources.List{Items: items, ResourceVersion: projects.ResourceVersion}, nil
}

func projectToUnstructured(p *projectv1.Project) (*unstructured.Unstructured, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorValidation, "convert project", err)
	}
	obj := &unstructured.Unstructured{Object: content}
	obj.SetAPIVersion("project.openshift.io/v1")
	obj.SetKind("Project")
	return obj, nil
}
