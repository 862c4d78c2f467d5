package pages

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// SecretTypeTLS is the type of kubernetes TLS secrets
const SecretTypeTLS = "kubernetes.io/tls"

// CertInfo summarises one X.509 certificate
type CertInfo struct {
	Key          string
	Subject      string
	Issuer       string
	DNSNames     []string
	IPAddresses  []string
	SerialNumber string
	NotBefore    time.Time
	NotAfter     time.Time
	IsCA         bool
}

// Status is Expired, Expiring (within 30 days) or Valid
func (c CertInfo) Status(now time.Time) string {
	switch {
	case !now.Before(c.NotAfter):
		return constants.CertStatusExpired
	case c.NotAfter.Sub(now) < constants.CertExpiryWarning:
		return constants.CertStatusExpiring
	default:
		return constants.CertStatusValid
	}
}

// DaysLeft is the number of whole days until expiry, negative once expired
func (c CertInfo) DaysLeft(now time.Time) int {
	d := c.NotAfter.Sub(now)
	days := int(d.Hours() / 24)
	if d < 0 && days == 0 {
		return -1
	}
	return days
}

// ParseCertificates decodes every CERTIFICATE block in PEM data
func ParseCertificates(data []byte) ([]CertInfo, error) {
	var certs []CertInfo
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		info := CertInfo{
			Subject:      cert.Subject.CommonName,
			Issuer:       cert.Issuer.CommonName,
			DNSNames:     cert.DNSNames,
			SerialNumber: cert.SerialNumber.String(),
			NotBefore:    cert.NotBefore,
			NotAfter:     cert.NotAfter,
			IsCA:         cert.IsCA,
		}
		for _, ip := range cert.IPAddresses {
			info.IPAddresses = append(info.IPAddresses, ip.String())
		}
		certs = append(certs, info)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no PEM certificate found")
	}
	return certs, nil
}

func isCertKey(key string) bool {
	return key == "tls.crt" || key == "ca.crt" || strings.HasSuffix(key, ".crt") || strings.HasSuffix(key, ".pem")
}

// SecretCertificates parses the certificates held by a secret: tls.crt of
// TLS secrets and any key ending in .crt or .pem. Keys that do not hold a
// certificate are skipped.
func SecretCertificates(obj *unstructured.Unstructured) []CertInfo {
	data, _, _ := unstructured.NestedStringMap(obj.Object, "data")
	keys := make([]string, 0, len(data))
	for k := range data {
		if isCertKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []CertInfo
	for _, k := range keys {
		raw, err := base64.StdEncoding.DecodeString(data[k])
		if err != nil {
			continue
		}
		certs, err := ParseCertificates(raw)
		if err != nil {
			continue
		}
		for i := range certs {
			certs[i].Key = k
		}
		out = append(out, certs...)
	}
	return out
}

// EarliestExpiry returns the certificate that expires first
func EarliestExpiry(certs []CertInfo) (CertInfo, bool) {
	if len(certs) == 0 {
		return CertInfo{}, false
	}
	first := certs[0]
	for _, c := range certs[1:] {
		if c.NotAfter.Before(first.NotAfter) {
			first = c
		}
	}
	return first, true
}
