package k8s

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"k8s.io/client-go/discovery"
)

// ClusterType represents the type of Kubernetes cluster
type ClusterType int

const (
	ClusterTypeUnknown ClusterType = iota
	ClusterTypeKubernetes
	ClusterTypeOpenShift
)

func (ct ClusterType) String() string {
	switch ct {
	case ClusterTypeKubernetes:
		return "Kubernetes"
	case ClusterTypeOpenShift:
		return "OpenShift"
	default:
		return "Unknown"
	}
}

// ClusterInfo contains information about the detected cluster
type ClusterInfo struct {
	Type          ClusterType
	Version       string
	ServerVersion string
	DetectionTime time.Time
	APIGroups     []string
	OpenShiftAPIs []string
}

var openShiftAPIGroups = []string{
	"route.openshift.io",
	"build.openshift.io",
	"image.openshift.io",
	"project.openshift.io",
	"apps.openshift.io",
	"template.openshift.io",
	"security.openshift.io",
	"user.openshift.io",
	"quota.openshift.io",
	"network.openshift.io",
	"authorization.openshift.io",
}

// ClusterTypeDetector detects and caches the flavour and version of a cluster
type ClusterTypeDetector struct {
	discovery discovery.DiscoveryInterface

	mu         sync.RWMutex
	cachedInfo *ClusterInfo
	cacheTime  time.Duration
}

// NewClusterTypeDetector creates a detector using the given discovery client
func NewClusterTypeDetector(dc discovery.DiscoveryInterface) (*ClusterTypeDetector, error) {
	if dc == nil {
		return nil, fmt.Errorf("discovery client is required")
	}
	return &ClusterTypeDetector{
		discovery: dc,
		cacheTime: constants.DefaultClusterCacheTime,
	}, nil
}

// DetectClusterType detects whether this is an OpenShift or vanilla Kubernetes cluster
func (d *ClusterTypeDetector) DetectClusterType(ctx context.Context) (*ClusterInfo, error) {
	d.mu.RLock()
	if d.cachedInfo != nil && time.Since(d.cachedInfo.DetectionTime) < d.cacheTime {
		info := *d.cachedInfo
		d.mu.RUnlock()
		return &info, nil
	}
	d.mu.RUnlock()

	type result struct {
		info *ClusterInfo
		err  error
	}
	// Discovery calls take no context, so the timeout is enforced around them
	done := make(chan result, 1)
	go func() {
		info, err := d.detect()
		done <- result{info, err}
	}()

	ctx, cancel := context.WithTimeout(ctx, constants.ClusterDetectionTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("cluster detection: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		d.mu.Lock()
		d.cachedInfo = r.info
		d.mu.Unlock()
		info := *r.info
		return &info, nil
	}
}

func (d *ClusterTypeDetector) detect() (*ClusterInfo, error) {
	info := &ClusterInfo{
		Type:          ClusterTypeUnknown,
		DetectionTime: time.Now(),
	}

	version, err := d.discovery.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}
	info.ServerVersion = version.GitVersion
	info.Version = fmt.Sprintf("%s.%s", version.Major, version.Minor)

	groups, err := d.discovery.ServerGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to get server groups: %w", err)
	}
	present := make(map[string]bool, len(groups.Groups))
	for _, group := range groups.Groups {
		info.APIGroups = append(info.APIGroups, group.Name)
		present[group.Name] = true
	}

	for _, osAPI := range openShiftAPIGroups {
		if present[osAPI] {
			info.OpenShiftAPIs = append(info.OpenShiftAPIs, osAPI)
		}
	}

	// A single stray CRD in an openshift.io group is not enough
	if len(info.OpenShiftAPIs) >= constants.MinOpenShiftAPIsThreshold {
		info.Type = ClusterTypeOpenShift
	} else {
		info.Type = ClusterTypeKubernetes
	}
	return info, nil
}

// IsOpenShift returns true if the cluster is detected as OpenShift
func (d *ClusterTypeDetector) IsOpenShift(ctx context.Context) (bool, error) {
	info, err := d.DetectClusterType(ctx)
	if err != nil {
		return false, err
	}
	return info.Type == ClusterTypeOpenShift, nil
}

// ClearCache clears the cached cluster detection result
func (d *ClusterTypeDetector) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cachedInfo = nil
}

// SetCacheTime sets the cache duration for cluster detection results
func (d *ClusterTypeDetector) SetCacheTime(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cacheTime = duration
}

// HasAPIGroup checks if a specific API group is available in the cluster
func (d *ClusterTypeDetector) HasAPIGroup(ctx context.Context, apiGroup string) (bool, error) {
	info, err := d.DetectClusterType(ctx)
	if err != nil {
		return false, err
	}
	for _, group := range info.APIGroups {
		if group == apiGroup {
			return true, nil
		}
	}
	return false, nil
}

// SupportsProjects returns true if the cluster serves OpenShift projects
func (d *ClusterTypeDetector) SupportsProjects(ctx context.Context) (bool, error) {
	return d.HasAPIGroup(ctx, "project.openshift.io")
}
