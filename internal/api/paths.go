package api

import (
	"net/url"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
)

func clusterPath(cluster string) string {
	return constants.ClustersPath + "/" + url.PathEscape(cluster)
}

// collectionPath is /api/v1/clusters/{c}/{resource} or
// /api/v1/clusters/{c}/namespaces/{ns}/{resource}
func collectionPath(cluster string, rt resources.ResourceType, namespace string) string {
	base := clusterPath(cluster)
	if rt.Namespaced && namespace != "" {
		base += "/namespaces/" + url.PathEscape(namespace)
	}
	return base + "/" + url.PathEscape(rt.Ref())
}

func itemPath(ref resources.Ref) string {
	return collectionPath(ref.Cluster, ref.Type, ref.Namespace) + "/" + url.PathEscape(ref.Name)
}

func nodePath(cluster, node string) string {
	return clusterPath(cluster) + "/nodes/" + url.PathEscape(node)
}

// typeQuery carries the version of custom resources, which the path alone
// does not identify
func typeQuery(rt resources.ResourceType, q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if rt.Custom {
		q.Set("version", rt.Version)
	}
	return q
}
