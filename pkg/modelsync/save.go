package modelsync

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Marshal returns the YAML of the document, models keep the listing order
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, errors.Wrap(err, "failed to encode models")
	}
	return buf.Bytes(), nil
}

// Encode writes v as YAML with indent 2
func Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(enc.Close())
}

// Save writes the document to the YAML file, creating the folder if needed
func Save(path string, doc *Document) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create folder: %s", dir)
		}
	}
	if err = os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to save models: %s", path)
	}
	return nil
}

// WriteSummary prints the sync summary
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "Configuration Generation Summary:")
	fmt.Fprintf(w, "Total models configured: %d\n", r.Document.Models.Len())
	fmt.Fprintf(w, "Default model: %s\n", r.Document.DefaultModel)

	fmt.Fprintln(w, "\nModel families detected:")
	for _, family := range r.FamilyNames() {
		if variants := r.Families[family]; len(variants) > 0 {
			fmt.Fprintf(w, "- %s (variants: %s)\n", family, strings.Join(variants, ", "))
		} else {
			fmt.Fprintf(w, "- %s\n", family)
		}
	}

	if len(r.Unmatched) > 0 {
		fmt.Fprintln(w, "\nModels using default parameters:")
		for _, name := range r.Unmatched {
			fmt.Fprintf(w, "- %s\n", name)
		}
		params := make([]string, 0, len(r.DefaultParams))
		for _, k := range r.DefaultParams.Keys() {
			params = append(params, fmt.Sprintf("%s=%v", k, r.DefaultParams[k]))
		}
		fmt.Fprintf(w, "\nDefault parameters applied: %s\n", strings.Join(params, ", "))
	}
}

// Summary returns the sync summary
func (r *Result) Summary() string {
	var b strings.Builder
	r.WriteSummary(&b)
	return b.String()
}
