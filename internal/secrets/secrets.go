// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads user-specific values from a directory of plain-text files.
// Each file in the directory is one value: the filename is the key and the trimmed
// file contents are the value.
//
// Supported key files: contact-email.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ContactEmail is the key of the address advertised to upstream APIs.
const ContactEmail = "contact-email"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	values := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			values[name] = value
		}
	}

	return values, nil
}

// UserAgent returns product with the contact address from values appended as
// a mailto comment, or product alone when no address is configured.
func UserAgent(product string, values map[string]string) string {
	email, ok := values[ContactEmail]
	if !ok {
		return product
	}
	return fmt.Sprintf("%s (mailto:%s)", product, email)
}
