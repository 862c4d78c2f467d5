package pages

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/katyella/kconsole/internal/constants"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// SecretEntry is one key of a secret as displayed
type SecretEntry struct {
	Key    string
	Value  string
	Size   int
	Binary bool
}

// SecretEntries lists a secret's data keys. Values are masked unless
// reveal is set, in which case they are base64 decoded.
func SecretEntries(obj *unstructured.Unstructured, reveal bool) []SecretEntry {
	data, _, _ := unstructured.NestedStringMap(obj.Object, "data")
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]SecretEntry, 0, len(keys))
	for _, k := range keys {
		raw, err := base64.StdEncoding.DecodeString(data[k])
		if err != nil {
			raw = []byte(data[k])
		}
		e := SecretEntry{Key: k, Size: len(raw), Binary: !utf8.Valid(raw)}
		switch {
		case !reveal:
			e.Value = constants.MaskedValue
		case e.Binary:
			e.Value = fmt.Sprintf("<binary %d bytes>", len(raw))
		default:
			e.Value = string(raw)
		}
		entries = append(entries, e)
	}
	return entries
}

// IsSecret reports whether obj is a core Secret
func IsSecret(obj *unstructured.Unstructured) bool {
	return strings.EqualFold(obj.GetKind(), "Secret") && obj.GetAPIVersion() == "v1"
}

// MaskSecret returns a copy of obj with every data and stringData value
// replaced by the mask. Objects other than secrets are returned unchanged.
func MaskSecret(obj *unstructured.Unstructured) *unstructured.Unstructured {
	if !IsSecret(obj) {
		return obj
	}
	out := obj.DeepCopy()
	for _, field := range []string{"data", "stringData"} {
		values, found, _ := unstructured.NestedMap(out.Object, field)
		if !found {
			continue
		}
		for k := range values {
			values[k] = constants.MaskedValue
		}
		_ = unstructured.SetNestedMap(out.Object, values, field)
	}
	return out
}
