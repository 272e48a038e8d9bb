package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "lowerc/program/v1"
	DomainConfig  = "lowerc/config/v1"
	DomainUnit    = "lowerc/unit/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramFingerprint identifies a front-end dump by the classes it declares
// and their member signatures. Two dumps with the same fingerprint translate
// to the same output under the same configuration.
func ProgramFingerprint(p *Program) (string, error) {
	classes := make([]any, 0, len(p.Classes))
	for _, c := range p.Classes {
		methods := make([]any, 0, len(c.Methods))
		for _, m := range c.Methods {
			methods = append(methods, map[string]any{
				"key":      MethodKey(c.Name, m.Name, m.Params),
				"return":   m.Return,
				"static":   m.Static,
				"concrete": m.Concrete,
				"units":    len(m.Units),
			})
		}
		fields := make([]any, 0, len(c.Fields))
		for _, f := range c.Fields {
			fields = append(fields, f.Name+":"+f.Type)
		}
		classes = append(classes, map[string]any{
			"name":         c.Name,
			"super":        c.Super,
			"interfaces":   stringsOrEmpty(c.Interfaces),
			"restrictions": stringsOrEmpty(c.Restrictions),
			"fields":       fields,
			"methods":      methods,
		})
	}

	canonical, err := MarshalCanonical(map[string]any{
		"classes":   classes,
		"points_to": len(p.PointsTo),
	})
	if err != nil {
		return "", fmt.Errorf("ProgramFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// ConfigFingerprint hashes a flattened option map.
func ConfigFingerprint(opts map[string]any) (string, error) {
	canonical, err := MarshalCanonical(opts)
	if err != nil {
		return "", fmt.Errorf("ConfigFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// UnitHash identifies one emitted target unit by name and content.
func UnitHash(name, text string) string {
	return hashWithDomain(DomainUnit, []byte(name+"\x00"+text))
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
