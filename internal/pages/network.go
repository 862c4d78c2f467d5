package pages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/table"
	routev1 "github.com/openshift/api/route/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const maxListed = 3

func init() {
	register(&Page{
		Resource: "services",
		Columns: []table.Column{
			col("type", "TYPE", 12),
			col("clusterip", "CLUSTER-IP", 15),
			col("externalip", "EXTERNAL-IP", 15),
			col("ports", "PORTS", 20),
		},
		cells:    serviceCells,
		overview: serviceOverview,
		template: serviceTemplate,
	})
	register(&Page{
		Resource: "ingresses",
		Columns: []table.Column{
			col("class", "CLASS", 10),
			col("hosts", "HOSTS", 28),
			col("address", "ADDRESS", 15),
		},
		cells:    ingressCells,
		template: ingressTemplate,
	})
	register(&Page{
		Resource: "endpoints",
		Columns:  []table.Column{col("endpoints", "ENDPOINTS", 40)},
		cells:    endpointsCells,
	})
	register(&Page{
		Resource: "networkpolicies",
		Columns:  []table.Column{col("podselector", "POD-SELECTOR", 30)},
		cells:    networkPolicyCells,
	})
	register(&Page{
		Resource: "routes",
		Columns: []table.Column{
			col("host", "HOST", 30),
			col("path", "PATH", 10),
			col("service", "SERVICE", 16),
			col("tls", "TLS", 10),
		},
		cells: routeCells,
	})
}

// truncateList joins the first few items and counts the rest
func truncateList(items []string) string {
	if len(items) == 0 {
		return "<none>"
	}
	if len(items) <= maxListed {
		return strings.Join(items, ",")
	}
	return fmt.Sprintf("%s + %d more...", strings.Join(items[:maxListed], ","), len(items)-maxListed)
}

func servicePorts(svc *corev1.Service) string {
	var ports []string
	for _, p := range svc.Spec.Ports {
		s := fmt.Sprintf("%d", p.Port)
		if p.NodePort != 0 {
			s = fmt.Sprintf("%d:%d", p.Port, p.NodePort)
		}
		protocol := p.Protocol
		if protocol == "" {
			protocol = corev1.ProtocolTCP
		}
		ports = append(ports, s+"/"+string(protocol))
	}
	return orNone(strings.Join(ports, ","))
}

func externalIP(svc *corev1.Service) string {
	var ips []string
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.IP != "" {
			ips = append(ips, ing.IP)
		} else if ing.Hostname != "" {
			ips = append(ips, ing.Hostname)
		}
	}
	ips = append(ips, svc.Spec.ExternalIPs...)
	if len(ips) == 0 {
		if svc.Spec.Type == corev1.ServiceTypeLoadBalancer {
			return "<pending>"
		}
		return "<none>"
	}
	return strings.Join(ips, ",")
}

func serviceCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	svc, ok := decode[corev1.Service](obj)
	if !ok {
		return nil
	}
	svcType := string(svc.Spec.Type)
	if svcType == "" {
		svcType = string(corev1.ServiceTypeClusterIP)
	}
	return map[string]table.Cell{
		"type":       table.Text(svcType),
		"clusterip":  table.Text(orNone(svc.Spec.ClusterIP)),
		"externalip": table.Text(externalIP(svc)),
		"ports":      table.Text(servicePorts(svc)),
	}
}

func serviceOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	svc, ok := decode[corev1.Service](obj)
	if !ok {
		return nil
	}
	fields := []Field{
		{"Service", "Type", orDefault(string(svc.Spec.Type), string(corev1.ServiceTypeClusterIP))},
		{"Service", "Cluster IP", orNone(svc.Spec.ClusterIP)},
		{"Service", "External IP", externalIP(svc)},
		{"Service", "Selector", orNone(joinMap(svc.Spec.Selector))},
		{"Service", "Session Affinity", orNone(string(svc.Spec.SessionAffinity))},
	}
	for _, p := range svc.Spec.Ports {
		label := orDefault(p.Name, fmt.Sprintf("%d", p.Port))
		fields = append(fields, Field{"Ports", label, fmt.Sprintf("%d -> %s/%s", p.Port, p.TargetPort.String(), orDefault(string(p.Protocol), "TCP"))})
	}
	return fields
}

func ingressCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	ing, ok := decode[networkingv1.Ingress](obj)
	if !ok {
		return nil
	}
	class := "<none>"
	if ing.Spec.IngressClassName != nil {
		class = *ing.Spec.IngressClassName
	}
	var hosts []string
	for _, r := range ing.Spec.Rules {
		if r.Host != "" {
			hosts = append(hosts, r.Host)
		}
	}
	if len(hosts) == 0 {
		hosts = []string{"*"}
	}
	var addrs []string
	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.IP != "" {
			addrs = append(addrs, lb.IP)
		} else if lb.Hostname != "" {
			addrs = append(addrs, lb.Hostname)
		}
	}
	return map[string]table.Cell{
		"class":   table.Text(class),
		"hosts":   table.Text(truncateList(hosts)),
		"address": table.Text(orNone(strings.Join(addrs, ","))),
	}
}

func endpointsCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	ep, ok := decode[corev1.Endpoints](obj)
	if !ok {
		return nil
	}
	var addrs []string
	for _, subset := range ep.Subsets {
		for _, addr := range subset.Addresses {
			if len(subset.Ports) == 0 {
				addrs = append(addrs, addr.IP)
				continue
			}
			for _, port := range subset.Ports {
				addrs = append(addrs, fmt.Sprintf("%s:%d", addr.IP, port.Port))
			}
		}
	}
	return map[string]table.Cell{"endpoints": table.Text(truncateList(addrs))}
}

func networkPolicyCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	np, ok := decode[networkingv1.NetworkPolicy](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"podselector": table.Text(metav1.FormatLabelSelector(&np.Spec.PodSelector)),
	}
}

func routeCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	r, ok := decode[routev1.Route](obj)
	if !ok {
		return nil
	}
	tls := "<none>"
	if r.Spec.TLS != nil {
		tls = string(r.Spec.TLS.Termination)
	}
	services := []string{r.Spec.To.Name}
	for _, b := range r.Spec.AlternateBackends {
		services = append(services, b.Name)
	}
	sort.Strings(services[1:])
	return map[string]table.Cell{
		"host":    table.Text(orNone(r.Spec.Host)),
		"path":    table.Text(r.Spec.Path),
		"service": table.Text(strings.Join(services, ",")),
		"tls":     table.Text(tls),
	}
}
