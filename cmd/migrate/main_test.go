package main

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"testing"
)

func TestMigrationFilenamePattern(t *testing.T) {
	pattern := regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_init_schema_migrations.sql", true, "0001", "init_schema_migrations"},
		{"0002_normalized_records.sql", true, "0002", "normalized_records"},
		{"001_invalid.sql", false, "", ""},        // wrong number format
		{"0001_test", false, "", ""},              // missing .sql
		{"0001.sql", false, "", ""},               // missing name
		{"invalid_0001_test.sql", false, "", ""},  // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := pattern.FindStringSubmatch(tt.filename)
			if tt.valid {
				if matches == nil {
					t.Fatalf("%s should match", tt.filename)
				}
				if matches[1] != tt.version || matches[2] != tt.name {
					t.Errorf("parsed %q/%q, want %q/%q", matches[1], matches[2], tt.version, tt.name)
				}
			} else if matches != nil {
				t.Errorf("%s should not match", tt.filename)
			}
		})
	}
}

func TestMigrationChecksumConsistency(t *testing.T) {
	content := []byte("CREATE TABLE test (id INT64);")

	first := fmt.Sprintf("%x", sha256.Sum256(content))
	second := fmt.Sprintf("%x", sha256.Sum256(content))
	if first != second {
		t.Error("same content should produce the same checksum")
	}

	other := fmt.Sprintf("%x", sha256.Sum256([]byte("CREATE TABLE different (id INT64);")))
	if first == other {
		t.Error("different content should produce different checksums")
	}
}
