package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/table"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func init() {
	register(&Page{
		Resource: "pods",
		Columns: []table.Column{
			col("ready", "READY", 7),
			col("status", "STATUS", 18),
			numCol("restarts", "RESTARTS", 8),
			col("node", "NODE", 20),
			col("ip", "IP", 15),
		},
		cells:    podCells,
		overview: podOverview,
		template: podTemplate,
	})
	register(&Page{
		Resource: "deployments",
		Columns: []table.Column{
			col("ready", "READY", 7),
			numCol("uptodate", "UP-TO-DATE", 10),
			numCol("available", "AVAILABLE", 9),
		},
		cells:    deploymentCells,
		overview: deploymentOverview,
		template: deploymentTemplate,
	})
	register(&Page{
		Resource: "statefulsets",
		Columns: []table.Column{
			col("ready", "READY", 7),
			numCol("uptodate", "UP-TO-DATE", 10),
			numCol("available", "AVAILABLE", 9),
		},
		cells:    statefulSetCells,
		template: statefulSetTemplate,
	})
	register(&Page{
		Resource: "daemonsets",
		Columns: []table.Column{
			numCol("desired", "DESIRED", 7),
			numCol("current", "CURRENT", 7),
			numCol("ready", "READY", 7),
		},
		cells: daemonSetCells,
	})
	register(&Page{
		Resource: "replicasets",
		Columns: []table.Column{
			numCol("desired", "DESIRED", 7),
			numCol("current", "CURRENT", 7),
			numCol("ready", "READY", 7),
		},
		cells: replicaSetCells,
	})
	register(&Page{
		Resource: "jobs",
		Columns: []table.Column{
			col("completions", "COMPLETIONS", 11),
			col("duration", "DURATION", 9),
		},
		cells:    jobCells,
		template: jobTemplate,
	})
	register(&Page{
		Resource: "cronjobs",
		Columns: []table.Column{
			col("schedule", "SCHEDULE", 14),
			col("suspend", "SUSPEND", 7),
			numCol("active", "ACTIVE", 6),
			col("lastschedule", "LAST SCHEDULE", 13),
		},
		cells:    cronJobCells,
		template: cronJobTemplate,
	})
	register(&Page{
		Resource: "horizontalpodautoscalers",
		Columns: []table.Column{
			col("reference", "REFERENCE", 24),
			numCol("min", "MIN", 4),
			numCol("max", "MAX", 4),
			numCol("replicas", "REPLICAS", 8),
		},
		cells: hpaCells,
	})
	register(&Page{
		Resource: "poddisruptionbudgets",
		Columns: []table.Column{
			col("minavailable", "MIN AVAILABLE", 13),
			col("maxunavailable", "MAX UNAVAILABLE", 15),
			numCol("allowed", "ALLOWED DISRUPTIONS", 19),
		},
		cells:    pdbCells,
		overview: pdbOverview,
	})
}

// PodStatus is the status column kubectl shows: a container waiting or
// terminated reason beats the pod phase, and deletion beats everything
func PodStatus(pod *corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	status := string(pod.Status.Phase)
	if pod.Status.Reason != "" {
		status = pod.Status.Reason
	}
	for _, cs := range pod.Status.InitContainerStatuses {
		if w := cs.State.Waiting; w != nil && w.Reason != "" && w.Reason != "PodInitializing" {
			return "Init:" + w.Reason
		}
		if t := cs.State.Terminated; t != nil && t.ExitCode != 0 {
			return "Init:" + orDefault(t.Reason, "Error")
		}
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if w := cs.State.Waiting; w != nil && w.Reason != "" {
			status = w.Reason
		} else if t := cs.State.Terminated; t != nil && t.Reason != "" {
			status = t.Reason
		}
	}
	if status == "" {
		status = "Unknown"
	}
	return status
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func podCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	pod, ok := decode[corev1.Pod](obj)
	if !ok {
		return nil
	}
	var ready, restarts int64
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += int64(cs.RestartCount)
	}
	return map[string]table.Cell{
		"ready":    ratio(ready, int64(len(pod.Spec.Containers))),
		"status":   table.Text(PodStatus(pod)),
		"restarts": count(restarts),
		"node":     table.Text(orNone(pod.Spec.NodeName)),
		"ip":       table.Text(orNone(pod.Status.PodIP)),
	}
}

func containerState(cs corev1.ContainerStatus) string {
	switch {
	case cs.State.Running != nil:
		return "Running"
	case cs.State.Waiting != nil:
		return strings.TrimSpace("Waiting " + cs.State.Waiting.Reason)
	case cs.State.Terminated != nil:
		return fmt.Sprintf("Terminated %s (exit %d)", cs.State.Terminated.Reason, cs.State.Terminated.ExitCode)
	}
	return "Unknown"
}

func podOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	pod, ok := decode[corev1.Pod](obj)
	if !ok {
		return nil
	}
	fields := []Field{
		{"Status", "Phase", string(pod.Status.Phase)},
		{"Status", "Status", PodStatus(pod)},
		{"Status", "Node", orNone(pod.Spec.NodeName)},
		{"Status", "Pod IP", orNone(pod.Status.PodIP)},
		{"Status", "QoS Class", orNone(string(pod.Status.QOSClass))},
		{"Status", "Service Account", orNone(pod.Spec.ServiceAccountName)},
	}
	statuses := make(map[string]corev1.ContainerStatus, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		statuses[cs.Name] = cs
	}
	for _, c := range pod.Spec.Containers {
		section := "Container " + c.Name
		fields = append(fields, Field{section, "Image", c.Image})
		if cs, ok := statuses[c.Name]; ok {
			fields = append(fields,
				Field{section, "State", containerState(cs)},
				Field{section, "Ready", fmt.Sprintf("%t", cs.Ready)},
				Field{section, "Restarts", fmt.Sprintf("%d", cs.RestartCount)},
			)
		}
		if len(c.Ports) > 0 {
			var ports []string
			for _, p := range c.Ports {
				ports = append(ports, fmt.Sprintf("%d/%s", p.ContainerPort, p.Protocol))
			}
			fields = append(fields, Field{section, "Ports", strings.Join(ports, ", ")})
		}
		if req := c.Resources.Requests; len(req) > 0 {
			fields = append(fields, Field{section, "Requests", resourceList(req)})
		}
		if lim := c.Resources.Limits; len(lim) > 0 {
			fields = append(fields, Field{section, "Limits", resourceList(lim)})
		}
	}
	for _, cond := range pod.Status.Conditions {
		fields = append(fields, Field{"Conditions", string(cond.Type), string(cond.Status)})
	}
	return fields
}

func resourceList(rl corev1.ResourceList) string {
	var parts []string
	if cpu, ok := rl[corev1.ResourceCPU]; ok {
		parts = append(parts, "cpu="+format.FormatCPU(cpu.AsApproximateFloat64()))
	}
	if mem, ok := rl[corev1.ResourceMemory]; ok {
		parts = append(parts, "memory="+format.FormatBytes(mem.Value()))
	}
	return strings.Join(parts, ", ")
}

func replicas(p *int32) int64 {
	if p == nil {
		return 1
	}
	return int64(*p)
}

func deploymentCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	d, ok := decode[appsv1.Deployment](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"ready":     ratio(int64(d.Status.ReadyReplicas), replicas(d.Spec.Replicas)),
		"uptodate":  count(int64(d.Status.UpdatedReplicas)),
		"available": count(int64(d.Status.AvailableReplicas)),
	}
}

func deploymentOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	d, ok := decode[appsv1.Deployment](obj)
	if !ok {
		return nil
	}
	strategy := string(d.Spec.Strategy.Type)
	if strategy == "" {
		strategy = string(appsv1.RollingUpdateDeploymentStrategyType)
	}
	fields := []Field{
		{"Replicas", "Desired", fmt.Sprintf("%d", replicas(d.Spec.Replicas))},
		{"Replicas", "Ready", fmt.Sprintf("%d", d.Status.ReadyReplicas)},
		{"Replicas", "Updated", fmt.Sprintf("%d", d.Status.UpdatedReplicas)},
		{"Replicas", "Available", fmt.Sprintf("%d", d.Status.AvailableReplicas)},
		{"Spec", "Strategy", strategy},
	}
	if d.Spec.Selector != nil {
		fields = append(fields, Field{"Spec", "Selector", joinMap(d.Spec.Selector.MatchLabels)})
	}
	var images []string
	for _, c := range d.Spec.Template.Spec.Containers {
		images = append(images, c.Image)
	}
	fields = append(fields, Field{"Spec", "Images", strings.Join(images, ", ")})
	for _, cond := range d.Status.Conditions {
		fields = append(fields, Field{"Conditions", string(cond.Type), strings.TrimSpace(string(cond.Status) + " " + cond.Reason)})
	}
	return fields
}

func statefulSetCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	s, ok := decode[appsv1.StatefulSet](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"ready":     ratio(int64(s.Status.ReadyReplicas), replicas(s.Spec.Replicas)),
		"uptodate":  count(int64(s.Status.UpdatedReplicas)),
		"available": count(int64(s.Status.AvailableReplicas)),
	}
}

func daemonSetCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	d, ok := decode[appsv1.DaemonSet](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"desired": count(int64(d.Status.DesiredNumberScheduled)),
		"current": count(int64(d.Status.CurrentNumberScheduled)),
		"ready":   count(int64(d.Status.NumberReady)),
	}
}

func replicaSetCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	r, ok := decode[appsv1.ReplicaSet](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"desired": count(replicas(r.Spec.Replicas)),
		"current": count(int64(r.Status.Replicas)),
		"ready":   count(int64(r.Status.ReadyReplicas)),
	}
}

func jobCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	j, ok := decode[batchv1.Job](obj)
	if !ok {
		return nil
	}
	completions := int64(1)
	if j.Spec.Completions != nil {
		completions = int64(*j.Spec.Completions)
	}
	duration := table.Cell{Text: "<none>"}
	if j.Status.StartTime != nil {
		end := now
		if j.Status.CompletionTime != nil {
			end = j.Status.CompletionTime.Time
		}
		d := end.Sub(j.Status.StartTime.Time)
		duration = table.Cell{Text: format.FormatDuration(d), Sort: int64(d)}
	}
	return map[string]table.Cell{
		"completions": ratio(int64(j.Status.Succeeded), completions),
		"duration":    duration,
	}
}

func cronJobCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	c, ok := decode[batchv1.CronJob](obj)
	if !ok {
		return nil
	}
	suspend := c.Spec.Suspend != nil && *c.Spec.Suspend
	last := time.Time{}
	if c.Status.LastScheduleTime != nil {
		last = c.Status.LastScheduleTime.Time
	}
	return map[string]table.Cell{
		"schedule":     table.Text(c.Spec.Schedule),
		"suspend":      table.Text(fmt.Sprintf("%t", suspend)),
		"active":       count(int64(len(c.Status.Active))),
		"lastschedule": timeCell(last, now),
	}
}

func hpaCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	h, ok := decode[autoscalingv2.HorizontalPodAutoscaler](obj)
	if !ok {
		return nil
	}
	return map[string]table.Cell{
		"reference": table.Text(h.Spec.ScaleTargetRef.Kind + "/" + h.Spec.ScaleTargetRef.Name),
		"min":       count(replicas(h.Spec.MinReplicas)),
		"max":       count(int64(h.Spec.MaxReplicas)),
		"replicas":  count(int64(h.Status.CurrentReplicas)),
	}
}

func pdbCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	p, ok := decode[policyv1.PodDisruptionBudget](obj)
	if !ok {
		return nil
	}
	minAvailable, maxUnavailable := "N/A", "N/A"
	if p.Spec.MinAvailable != nil {
		minAvailable = p.Spec.MinAvailable.String()
	}
	if p.Spec.MaxUnavailable != nil {
		maxUnavailable = p.Spec.MaxUnavailable.String()
	}
	return map[string]table.Cell{
		"minavailable":   table.Text(minAvailable),
		"maxunavailable": table.Text(maxUnavailable),
		"allowed":        count(int64(p.Status.DisruptionsAllowed)),
	}
}

func pdbOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	p, ok := decode[policyv1.PodDisruptionBudget](obj)
	if !ok {
		return nil
	}
	fields := []Field{
		{"Budget", "Current Healthy", fmt.Sprintf("%d", p.Status.CurrentHealthy)},
		{"Budget", "Desired Healthy", fmt.Sprintf("%d", p.Status.DesiredHealthy)},
		{"Budget", "Expected Pods", fmt.Sprintf("%d", p.Status.ExpectedPods)},
		{"Budget", "Disruptions Allowed", fmt.Sprintf("%d", p.Status.DisruptionsAllowed)},
	}
	if p.Spec.Selector != nil {
		fields = append(fields, Field{"Budget", "Selector", joinMap(p.Spec.Selector.MatchLabels)})
	}
	return fields
}
