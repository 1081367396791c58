package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// leaves room for a future change of encoding.
const (
	DomainStatement  = "fbsql/statement/v1"
	DomainDefinition = "fbsql/definition/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator
// keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID is the journal key of s within run. Recording the same run
// twice yields the same ids.
func StatementID(runID string, s Statement) (string, error) {
	obj, err := s.object()
	if err != nil {
		return "", fmt.Errorf("StatementID: %w", err)
	}
	obj["run_id"] = IRString(runID)

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// DefinitionHash identifies a set of compiled statements independent of
// any run: same definitions and variant, same hash.
func DefinitionHash(variant string, statements []Statement) (string, error) {
	arr := make(IRArray, len(statements))
	for i, s := range statements {
		obj, err := s.object()
		if err != nil {
			return "", fmt.Errorf("DefinitionHash: statements[%d]: %w", i, err)
		}
		arr[i] = obj
	}
	canonical, err := MarshalCanonical(IRObject{
		"variant":    IRString(variant),
		"statements": arr,
	})
	if err != nil {
		return "", fmt.Errorf("DefinitionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDefinition, canonical), nil
}

// MustStatementID is like StatementID but panics on error.
// Use only in tests or when the bindings are known to convert.
func MustStatementID(runID string, s Statement) string {
	id, err := StatementID(runID, s)
	if err != nil {
		panic(err)
	}
	return id
}
