package pages

import (
	"fmt"
	"strings"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
)

const namespacePlaceholder = "__NAMESPACE__"

// CreateTemplate returns a YAML skeleton for a new object of rt
func (p *Page) CreateTemplate(rt resources.ResourceType, namespace string) string {
	if namespace == "" {
		namespace = constants.DefaultNamespace
	}
	tmpl := p.template
	if tmpl == "" {
		tmpl = genericTemplate(rt)
	}
	return strings.ReplaceAll(tmpl, namespacePlaceholder, namespace)
}

func genericTemplate(rt resources.ResourceType) string {
	kind := rt.Kind
	if kind == "" && rt.Singular != "" {
		kind = strings.ToUpper(rt.Singular[:1]) + rt.Singular[1:]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "apiVersion: %s\nkind: %s\nmetadata:\n  name: example\n", rt.APIVersion(), kind)
	if rt.Namespaced {
		fmt.Fprintf(&b, "  namespace: %s\n", namespacePlaceholder)
	}
	b.WriteString("spec: {}\n")
	return b.String()
}

const podTemplate = `apiVersion: v1
kind: Pod
metadata:
  name: example
  namespace: __NAMESPACE__
  labels:
    app: example
spec:
  containers:
  - name: main
    image: nginx:stable
    ports:
    - containerPort: 80
`

const deploymentTemplate = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  replicas: 1
  selector:
    matchLabels:
      app: example
  template:
    metadata:
      labels:
        app: example
    spec:
      containers:
      - name: main
        image: nginx:stable
        ports:
        - containerPort: 80
`

const statefulSetTemplate = `apiVersion: apps/v1
kind: StatefulSet
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  serviceName: example
  replicas: 1
  selector:
    matchLabels:
      app: example
  template:
    metadata:
      labels:
        app: example
    spec:
      containers:
      - name: main
        image: nginx:stable
`

const jobTemplate = `apiVersion: batch/v1
kind: Job
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  backoffLimit: 3
  template:
    spec:
      restartPolicy: Never
      containers:
      - name: main
        image: busybox:stable
        command: ["sh", "-c", "echo hello"]
`

const cronJobTemplate = `apiVersion: batch/v1
kind: CronJob
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  schedule: "*/5 * * * *"
  jobTemplate:
    spec:
      template:
        spec:
          restartPolicy: OnFailure
          containers:
          - name: main
            image: busybox:stable
            command: ["sh", "-c", "date"]
`

const serviceTemplate = `apiVersion: v1
kind: Service
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  selector:
    app: example
  ports:
  - port: 80
    targetPort: 80
`

const ingressTemplate = `apiVersion: networking.k8s.io/v1
kind: Ingress
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  rules:
  - host: example.local
    http:
      paths:
      - path: /
        pathType: Prefix
        backend:
          service:
            name: example
            port:
              number: 80
`

const configMapTemplate = `apiVersion: v1
kind: ConfigMap
metadata:
  name: example
  namespace: __NAMESPACE__
data:
  key: value
`

const secretTemplate = `apiVersion: v1
kind: Secret
metadata:
  name: example
  namespace: __NAMESPACE__
type: Opaque
stringData:
  key: value
`

const pvcTemplate = `apiVersion: v1
kind: PersistentVolumeClaim
metadata:
  name: example
  namespace: __NAMESPACE__
spec:
  accessModes:
  - ReadWriteOnce
  resources:
    requests:
      storage: 1Gi
`

const serviceAccountTemplate = `apiVersion: v1
kind: ServiceAccount
metadata:
  name: example
  namespace: __NAMESPACE__
`

const namespaceTemplate = `apiVersion: v1
kind: Namespace
metadata:
  name: example
`
