package pages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/table"
	coordinationv1 "k8s.io/api/coordination/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const nodeRolePrefix = "node-role.kubernetes.io/"

func init() {
	register(&Page{
		Resource: "nodes",
		Columns: []table.Column{
			col("status", "STATUS", 24),
			col("roles", "ROLES", 14),
			col("version", "VERSION", 10),
			numCol("cpu", "CPU", 5),
			numCol("memory", "MEMORY", 9),
		},
		cells:    nodeCells,
		overview: nodeOverview,
	})
	register(&Page{
		Resource: "namespaces",
		Columns:  []table.Column{col("status", "STATUS", 12)},
		cells:    namespaceCells,
		template: namespaceTemplate,
	})
	register(&Page{
		Resource: "events",
		Columns: []table.Column{
			col("type", "TYPE", 8),
			col("reason", "REASON", 16),
			col("object", "OBJECT", 28),
			col("message", "MESSAGE", 40),
			numCol("count", "COUNT", 5),
		},
		cells: eventCells,
	})
	register(&Page{
		Resource: "leases",
		Columns: []table.Column{
			col("holder", "HOLDER", 30),
			numCol("renewed", "RENEWED", 8),
		},
		cells:    leaseCells,
		overview: leaseOverview,
	})
}

// NodeStatus is Ready or NotReady, plus SchedulingDisabled when cordoned
func NodeStatus(node *corev1.Node) string {
	status := "Unknown"
	for _, c := range node.Status.Conditions {
		if c.Type == corev1.NodeReady {
			if c.Status == corev1.ConditionTrue {
				status = "Ready"
			} else {
				status = "NotReady"
			}
		}
	}
	if node.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

// NodeRoles lists the node-role.kubernetes.io label suffixes
func NodeRoles(node *corev1.Node) string {
	var roles []string
	for k := range node.Labels {
		if role, ok := strings.CutPrefix(k, nodeRolePrefix); ok && role != "" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return orNone(strings.Join(roles, ","))
}

func nodeCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	node, ok := decode[corev1.Node](obj)
	if !ok {
		return nil
	}
	cells := map[string]table.Cell{
		"status":  table.Text(NodeStatus(node)),
		"roles":   table.Text(NodeRoles(node)),
		"version": table.Text(node.Status.NodeInfo.KubeletVersion),
		"cpu":     {Text: ""},
		"memory":  {Text: ""},
	}
	if cpu, ok := node.Status.Capacity[corev1.ResourceCPU]; ok {
		cores := cpu.AsApproximateFloat64()
		cells["cpu"] = table.Cell{Text: format.FormatCPU(cores), Sort: cores}
	}
	if mem, ok := node.Status.Capacity[corev1.ResourceMemory]; ok {
		cells["memory"] = table.Cell{Text: format.FormatBytes(mem.Value()), Sort: mem.Value()}
	}
	return cells
}

func nodeOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	node, ok := decode[corev1.Node](obj)
	if !ok {
		return nil
	}
	info := node.Status.NodeInfo
	fields := []Field{
		{"Node", "Status", NodeStatus(node)},
		{"Node", "Roles", NodeRoles(node)},
		{"System", "Kubelet", info.KubeletVersion},
		{"System", "OS Image", info.OSImage},
		{"System", "Kernel", info.KernelVersion},
		{"System", "Container Runtime", info.ContainerRuntimeVersion},
		{"System", "Architecture", info.Architecture},
	}
	for _, a := range node.Status.Addresses {
		fields = append(fields, Field{"Addresses", string(a.Type), a.Address})
	}
	for _, section := range []struct {
		title string
		list  corev1.ResourceList
	}{
		{"Capacity", node.Status.Capacity},
		{"Allocatable", node.Status.Allocatable},
	} {
		if cpu, ok := section.list[corev1.ResourceCPU]; ok {
			fields = append(fields, Field{section.title, "CPU", format.FormatCPU(cpu.AsApproximateFloat64())})
		}
		if mem, ok := section.list[corev1.ResourceMemory]; ok {
			fields = append(fields, Field{section.title, "Memory", format.FormatBytes(mem.Value())})
		}
		if pods, ok := section.list[corev1.ResourcePods]; ok {
			fields = append(fields, Field{section.title, "Pods", pods.String()})
		}
	}
	for _, c := range node.Status.Conditions {
		fields = append(fields, Field{"Conditions", string(c.Type), strings.TrimSpace(string(c.Status) + " " + c.Reason)})
	}
	for _, t := range node.Spec.Taints {
		fields = append(fields, Field{"Taints", t.Key, fmt.Sprintf("%s:%s", t.Value, t.Effect)})
	}
	return fields
}

// Namespaces and OpenShift projects share status.phase
func namespaceCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	if obj.GetDeletionTimestamp() != nil {
		phase = "Terminating"
	}
	return map[string]table.Cell{"status": table.Text(orDefault(phase, "Active"))}
}

func eventCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	ev, ok := decode[corev1.Event](obj)
	if !ok {
		return nil
	}
	n := int64(ev.Count)
	if n == 0 {
		n = 1
	}
	involved := strings.ToLower(ev.InvolvedObject.Kind) + "/" + ev.InvolvedObject.Name
	return map[string]table.Cell{
		"type":    table.Text(ev.Type),
		"reason":  table.Text(ev.Reason),
		"object":  table.Text(involved),
		"message": table.Text(strings.TrimSpace(ev.Message)),
		"count":   count(n),
	}
}

func leaseCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	l, ok := decode[coordinationv1.Lease](obj)
	if !ok {
		return nil
	}
	holder := ""
	if l.Spec.HolderIdentity != nil {
		holder = *l.Spec.HolderIdentity
	}
	renewed := time.Time{}
	if l.Spec.RenewTime != nil {
		renewed = l.Spec.RenewTime.Time
	}
	return map[string]table.Cell{
		"holder":  table.Text(orNone(holder)),
		"renewed": timeCell(renewed, now),
	}
}

func leaseOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	l, ok := decode[coordinationv1.Lease](obj)
	if !ok {
		return nil
	}
	var fields []Field
	if l.Spec.HolderIdentity != nil {
		fields = append(fields, Field{"Lease", "Holder", *l.Spec.HolderIdentity})
	}
	if l.Spec.LeaseDurationSeconds != nil {
		fields = append(fields, Field{"Lease", "Duration", fmt.Sprintf("%ds", *l.Spec.LeaseDurationSeconds)})
	}
	if l.Spec.AcquireTime != nil {
		fields = append(fields, Field{"Lease", "Acquired", format.FormatAge(l.Spec.AcquireTime.Time, now) + " ago"})
	}
	if l.Spec.RenewTime != nil {
		fields = append(fields, Field{"Lease", "Renewed", format.FormatAge(l.Spec.RenewTime.Time, now) + " ago"})
	}
	if l.Spec.LeaseTransitions != nil {
		fields = append(fields, Field{"Lease", "Transitions", fmt.Sprintf("%d", *l.Spec.LeaseTransitions)})
	}
	return fields
}
