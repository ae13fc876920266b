/*
Copyright 2024 The Aazip Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mpetri/aazip"
)

func TestProcessCommandLineRejectsMissingMode(t *testing.T) {
	_, _, status := processCommandLine([]string{"aazip", "input.txt"})
	if status != aazip.ErrUsage {
		t.Fatalf("expected ErrUsage, got %d", status)
	}
}

func TestProcessCommandLineRejectsUnknownAlgorithm(t *testing.T) {
	_, _, status := processCommandLine([]string{"aazip", "-m", "bogus", "input.txt"})
	if status != aazip.ErrUsage {
		t.Fatalf("expected ErrUsage, got %d", status)
	}
}

func TestProcessCommandLineRejectsMissingFile(t *testing.T) {
	_, _, status := processCommandLine([]string{"aazip", "-m", "mtf"})
	if status != aazip.ErrUsage {
		t.Fatalf("expected ErrUsage, got %d", status)
	}
}

func TestProcessCommandLineHelp(t *testing.T) {
	mode, input, status := processCommandLine([]string{"aazip", "-h"})
	if status != 0 || mode != "" || input != "" {
		t.Fatalf("expected a clean, empty-mode exit for -h, got (%q,%q,%d)", mode, input, status)
	}
}

func TestProcessCommandLineAccepts(t *testing.T) {
	mode, input, status := processCommandLine([]string{"aazip", "-m", "mtf", "input.txt"})
	if status != 0 {
		t.Fatalf("unexpected status %d", status)
	}
	if mode != "mtf" || input != "input.txt" {
		t.Fatalf("got mode=%q input=%q", mode, input)
	}
}

func TestCompressWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")

	if err := os.WriteFile(in, []byte("mississippi river mississippi river"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	status := compress("mtf", in)
	if status != 0 {
		t.Fatalf("compress returned status %d", status)
	}

	info, err := os.Stat(in + ".aazip")
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected a non-empty output file")
	}
}

func TestCompressRejectsMissingInput(t *testing.T) {
	status := compress("mtf", filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if status != aazip.ErrReadFile {
		t.Fatalf("expected ErrReadFile, got %d", status)
	}
}
