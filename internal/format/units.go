package format

import (
	"fmt"
	"math"
	"strconv"

	"k8s.io/apimachinery/pkg/api/resource"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count in base-1024 units with at most two decimals
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	value := float64(n)
	i := 0
	// Compare the rounded value so 1023.999 KB moves up to 1 MB
	for round2(value) >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}
	return trimFloat(value) + " " + byteUnits[i]
}

// FormatQuantityBytes formats a Kubernetes memory or storage quantity ("128Mi").
// Input that is not a quantity is returned unchanged.
func FormatQuantityBytes(q string) string {
	parsed, err := resource.ParseQuantity(q)
	if err != nil {
		return q
	}
	return FormatBytes(parsed.Value())
}

// FormatCPU renders a core count: millicores below one core, otherwise cores
// with at most two decimals
func FormatCPU(cores float64) string {
	if cores <= 0 {
		return "0"
	}
	if cores < 1 {
		return fmt.Sprintf("%dm", int64(math.Round(cores*1000)))
	}
	return trimFloat(cores)
}

// FormatCPUQuantity formats a Kubernetes CPU quantity ("250m", "2").
// Input that is not a quantity is returned unchanged.
func FormatCPUQuantity(q string) string {
	parsed, err := resource.ParseQuantity(q)
	if err != nil {
		return q
	}
	return FormatCPU(float64(parsed.MilliValue()) / 1000)
}

// Percent renders used/total as a whole percentage
func Percent(used, total float64) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(used/total*100)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}
