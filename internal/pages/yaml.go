package pages

import (
	"fmt"

	"github.com/katyella/kconsole/internal/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// ToYAML renders obj without managedFields. Secret values are masked unless
// reveal is set.
func ToYAML(obj *unstructured.Unstructured, reveal bool) (string, error) {
	out := obj.DeepCopy()
	unstructured.RemoveNestedField(out.Object, "metadata", "managedFields")
	if !reveal {
		out = MaskSecret(out)
	}
	data, err := yaml.Marshal(out.Object)
	if err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return string(data), nil
}

// FromYAML parses an edited manifest. apiVersion, kind and metadata.name
// are required.
func FromYAML(text string) (*unstructured.Unstructured, error) {
	data, err := yaml.YAMLToJSON([]byte(text))
	if err != nil {
		return nil, errors.NewValidationError("invalid YAML", err)
	}
	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, errors.NewValidationError("invalid manifest", err)
	}
	switch {
	case obj.GetAPIVersion() == "":
		return nil, errors.NewValidationError("apiVersion is required", nil)
	case obj.GetKind() == "":
		return nil, errors.NewValidationError("kind is required", nil)
	case obj.GetName() == "":
		return nil, errors.NewValidationError("metadata.name is required", nil)
	}
	return obj, nil
}
