// Package validate checks the editable document against a schema through an
// external validator process. Validation is advisory: its diagnostics never
// gate a pull or push.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Validator validates an XML document against the schema at schemaPath and
// returns human-readable diagnostics. Empty diagnostics mean the document is
// valid. A non-nil error means validation could not run at all.
type Validator interface {
	Validate(ctx context.Context, doc, schemaPath string) (string, error)
}

// XMLLint validates with `xmllint --noout --relaxng <schema> -`.
type XMLLint struct {
	path string
}

// NewXMLLint builds a validator around the xmllint binary at path. Empty
// path means "xmllint" on PATH.
func NewXMLLint(path string) *XMLLint {
	if path == "" {
		path = "xmllint"
	}
	return &XMLLint{path: path}
}

// Validate runs the validator process. Schema violations come back as
// diagnostics text, not as an error.
func (v *XMLLint) Validate(ctx context.Context, doc, schemaPath string) (string, error) {
	if schemaPath == "" {
		return "", errors.New("validate: no schema configured")
	}

	cmd := exec.CommandContext(ctx, v.path, "--noout", "--relaxng", schemaPath, "-")
	cmd.Stdin = strings.NewReader(doc)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return "", nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The validator ran and found problems; report them as diagnostics.
		return strings.TrimSpace(stderr.String()), nil
	}
	return "", fmt.Errorf("validate: run %s: %w", v.path, err)
}
