// Package fingerprint derives stable keys from specification graphs. Two
// graphs describing the same query share a fingerprint regardless of the
// builder or sequence they were created with.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator/jsontree"
	"github.com/goccy/go-json"
)

const Prefix = "queryspec"

var (
	ErrInvalid = errors.New("fingerprint is malformed")

	validPattern = regexp.MustCompile(`^` + Prefix + `:[0-9a-f]{64}$`)
)

// Of hashes the canonical JSON tree of root.
func Of(root *spec.Node) (string, error) {
	doc, err := jsontree.Build(root)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", root, err)
	}

	hash := sha256.Sum256(data)

	return fmt.Sprintf("%s:%s", Prefix, hex.EncodeToString(hash[:])), nil
}

// Validate checks that fp has the shape produced by Of.
func Validate(fp string) error {
	if !validPattern.MatchString(fp) {
		return fmt.Errorf("%w: %q", ErrInvalid, fp)
	}

	return nil
}
