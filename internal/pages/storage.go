package pages

import (
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/table"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const defaultStorageClassAnnotation = "storageclass.kubernetes.io/is-default-class"

func init() {
	register(&Page{
		Resource: "persistentvolumes",
		Columns: []table.Column{
			numCol("capacity", "CAPACITY", 9),
			col("accessmodes", "ACCESS MODES", 12),
			col("reclaim", "RECLAIM POLICY", 14),
			col("status", "STATUS", 10),
			col("claim", "CLAIM", 24),
			col("storageclass", "STORAGECLASS", 14),
		},
		cells:    pvCells,
		overview: pvOverview,
	})
	register(&Page{
		Resource: "persistentvolumeclaims",
		Columns: []table.Column{
			col("status", "STATUS", 8),
			col("volume", "VOLUME", 24),
			numCol("capacity", "CAPACITY", 9),
			col("accessmodes", "ACCESS MODES", 12),
			col("storageclass", "STORAGECLASS", 14),
		},
		cells:    pvcCells,
		template: pvcTemplate,
	})
	register(&Page{
		Resource: "storageclasses",
		Columns: []table.Column{
			col("provisioner", "PROVISIONER", 28),
			col("reclaim", "RECLAIM POLICY", 14),
			col("default", "DEFAULT", 7),
		},
		cells: storageClassCells,
	})
}

var accessModeShort = map[corev1.PersistentVolumeAccessMode]string{
	corev1.ReadWriteOnce:    "RWO",
	corev1.ReadOnlyMany:     "ROX",
	corev1.ReadWriteMany:    "RWX",
	corev1.ReadWriteOncePod: "RWOP",
}

func accessModes(modes []corev1.PersistentVolumeAccessMode) string {
	var out []string
	for _, m := range modes {
		if s, ok := accessModeShort[m]; ok {
			out = append(out, s)
		} else {
			out = append(out, string(m))
		}
	}
	return strings.Join(out, ",")
}

func storageCell(rl corev1.ResourceList) table.Cell {
	q, ok := rl[corev1.ResourceStorage]
	if !ok {
		return table.Cell{Text: ""}
	}
	return table.Cell{Text: format.FormatBytes(q.Value()), Sort: q.Value()}
}

func pvCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	pv, ok := decode[corev1.PersistentVolume](obj)
	if !ok {
		return nil
	}
	claim := ""
	if ref := pv.Spec.ClaimRef; ref != nil {
		claim = ref.Namespace + "/" + ref.Name
	}
	return map[string]table.Cell{
		"capacity":     storageCell(pv.Spec.Capacity),
		"accessmodes":  table.Text(accessModes(pv.Spec.AccessModes)),
		"reclaim":      table.Text(string(pv.Spec.PersistentVolumeReclaimPolicy)),
		"status":       table.Text(string(pv.Status.Phase)),
		"claim":        table.Text(claim),
		"storageclass": table.Text(pv.Spec.StorageClassName),
	}
}

func pvOverview(obj *unstructured.Unstructured, now time.Time) []Field {
	pv, ok := decode[corev1.PersistentVolume](obj)
	if !ok {
		return nil
	}
	fields := []Field{
		{"Volume", "Capacity", storageCell(pv.Spec.Capacity).Text},
		{"Volume", "Access Modes", accessModes(pv.Spec.AccessModes)},
		{"Volume", "Reclaim Policy", string(pv.Spec.PersistentVolumeReclaimPolicy)},
		{"Volume", "Status", string(pv.Status.Phase)},
		{"Volume", "Storage Class", orNone(pv.Spec.StorageClassName)},
	}
	if pv.Spec.VolumeMode != nil {
		fields = append(fields, Field{"Volume", "Volume Mode", string(*pv.Spec.VolumeMode)})
	}
	switch {
	case pv.Spec.CSI != nil:
		fields = append(fields, Field{"Source", "CSI Driver", pv.Spec.CSI.Driver}, Field{"Source", "Volume Handle", pv.Spec.CSI.VolumeHandle})
	case pv.Spec.NFS != nil:
		fields = append(fields, Field{"Source", "NFS", pv.Spec.NFS.Server + ":" + pv.Spec.NFS.Path})
	case pv.Spec.HostPath != nil:
		fields = append(fields, Field{"Source", "Host Path", pv.Spec.HostPath.Path})
	case pv.Spec.Local != nil:
		fields = append(fields, Field{"Source", "Local", pv.Spec.Local.Path})
	}
	if ref := pv.Spec.ClaimRef; ref != nil {
		fields = append(fields, Field{"Volume", "Claim", ref.Namespace + "/" + ref.Name})
	}
	return fields
}

func pvcCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	pvc, ok := decode[corev1.PersistentVolumeClaim](obj)
	if !ok {
		return nil
	}
	class := ""
	if pvc.Spec.StorageClassName != nil {
		class = *pvc.Spec.StorageClassName
	}
	return map[string]table.Cell{
		"status":       table.Text(string(pvc.Status.Phase)),
		"volume":       table.Text(pvc.Spec.VolumeName),
		"capacity":     storageCell(pvc.Status.Capacity),
		"accessmodes":  table.Text(accessModes(pvc.Status.AccessModes)),
		"storageclass": table.Text(class),
	}
}

func storageClassCells(obj *unstructured.Unstructured, now time.Time) map[string]table.Cell {
	sc, ok := decode[storagev1.StorageClass](obj)
	if !ok {
		return nil
	}
	reclaim := string(corev1.PersistentVolumeReclaimDelete)
	if sc.ReclaimPolicy != nil {
		reclaim = string(*sc.ReclaimPolicy)
	}
	def := "false"
	if sc.Annotations[defaultStorageClassAnnotation] == "true" {
		def = "true"
	}
	return map[string]table.Cell{
		"provisioner": table.Text(sc.Provisioner),
		"reclaim":     table.Text(reclaim),
		"default":     table.Text(def),
	}
}
