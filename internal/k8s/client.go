package k8s

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	projectclientset "github.com/openshift/client-go/project/clientset/versioned"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// InClusterName is the cluster name used when running inside a pod
const InClusterName = "in-cluster"

// ClusterClients bundles the clients for one kubeconfig context
type ClusterClients struct {
	Name      string
	Namespace string
	Config    *rest.Config
	Clientset kubernetes.Interface
	Dynamic   dynamic.Interface
	Projects  projectclientset.Interface
	Detector  *ClusterTypeDetector
}

// ClientFactory creates clients per kubeconfig context on first use
type ClientFactory struct {
	kubeconfig string
	raw        *clientcmdapi.Config
	current    string
	inCluster  *rest.Config

	mu      sync.Mutex
	clients map[string]*ClusterClients
}

// NewClientFactory loads the kubeconfig at path. When the file does not
// exist and the process runs inside a cluster, the in-cluster config is used.
func NewClientFactory(path string) (*ClientFactory, error) {
	f := &ClientFactory{kubeconfig: path, clients: make(map[string]*ClusterClients)}

	if path == "" {
		return nil, errors.NewConfigError(constants.ErrNoKubeconfigPath, nil)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config, icErr := rest.InClusterConfig()
		if icErr != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("kubeconfig file not found at %s", path), err)
		}
		f.inCluster = config
		f.current = InClusterName
		return f, nil
	}

	raw, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to load kubeconfig", err)
	}
	if len(raw.Contexts) == 0 {
		return nil, errors.NewConfigError(fmt.Sprintf("kubeconfig %s has no contexts", path), nil)
	}
	f.raw = raw
	f.current = raw.CurrentContext
	return f, nil
}

// NewClientFactoryWith serves prebuilt clients, the first name being the
// current context
func NewClientFactoryWith(clients ...*ClusterClients) *ClientFactory {
	f := &ClientFactory{clients: make(map[string]*ClusterClients)}
	for i, c := range clients {
		if i == 0 {
			f.current = c.Name
		}
		f.clients[c.Name] = c
	}
	return f
}

// Contexts returns every cluster name, sorted
func (f *ClientFactory) Contexts() []string {
	var names []string
	switch {
	case f.raw != nil:
		for name := range f.raw.Contexts {
			names = append(names, name)
		}
	case f.inCluster != nil:
		names = append(names, InClusterName)
	default:
		f.mu.Lock()
		for name := range f.clients {
			names = append(names, name)
		}
		f.mu.Unlock()
	}
	sort.Strings(names)
	return names
}

// CurrentContext returns the kubeconfig's current context
func (f *ClientFactory) CurrentContext() string {
	return f.current
}

// For returns the clients for the named cluster, building them on first use
func (f *ClientFactory) For(name string) (*ClusterClients, error) {
	if name == "" {
		name = f.current
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[name]; ok {
		return c, nil
	}

	config, namespace, err := f.restConfig(name)
	if err != nil {
		return nil, err
	}
	c, err := newClusterClients(name, namespace, config)
	if err != nil {
		return nil, err
	}
	f.clients[name] = c
	return c, nil
}

func (f *ClientFactory) restConfig(name string) (*rest.Config, string, error) {
	if f.inCluster != nil && name == InClusterName {
		return f.inCluster, constants.DefaultNamespace, nil
	}
	if f.raw == nil {
		return nil, "", errors.NewNotFoundError(fmt.Sprintf("%s %q", constants.ErrUnknownCluster, name))
	}
	if _, ok := f.raw.Contexts[name]; !ok {
		return nil, "", errors.NewNotFoundError(fmt.Sprintf("%s %q", constants.ErrUnknownCluster, name))
	}

	cc := clientcmd.NewNonInteractiveClientConfig(*f.raw, name, &clientcmd.ConfigOverrides{}, nil)
	config, err := cc.ClientConfig()
	if err != nil {
		return nil, "", errors.NewConfigError(fmt.Sprintf("build config for context %s", name), err)
	}
	namespace, _, err := cc.Namespace()
	if err != nil || namespace == "" {
		namespace = constants.DefaultNamespace
	}
	return config, namespace, nil
}

func newClusterClients(name, namespace string, config *rest.Config) (*ClusterClients, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, errors.NewConfigError("failed to create kubernetes clientset", err)
	}
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, errors.NewConfigError("failed to create dynamic client", err)
	}
	projects, err := projectclientset.NewForConfig(config)
	if err != nil {
		return nil, errors.NewConfigError("failed to create OpenShift project client", err)
	}
	detector, err := NewClusterTypeDetector(clientset.Discovery())
	if err != nil {
		return nil, err
	}
	return &ClusterClients{
		Name:      name,
		Namespace: namespace,
		Config:    config,
		Clientset: clientset,
		Dynamic:   dyn,
		Projects:  projects,
		Detector:  detector,
	}, nil
}
