// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxReadBytes caps how much of a single file a detector reads. Large
// generated files past this point are not useful signal.
const maxReadBytes = 512 * 1024

// skipDirs are directory names that never hold first-party source.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".terraform":   true,
}

// skipSuffixes are file extensions detectors never inspect.
var skipSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".ico", ".pdf",
	".zip", ".tar", ".gz", ".tgz", ".jar", ".war",
	".so", ".dylib", ".dll", ".exe", ".bin",
	".woff", ".woff2", ".ttf", ".eot",
	".mp3", ".mp4", ".mov",
	".lock",
}

// sourceFile is one readable text file handed to a detector's rule loop.
type sourceFile struct {
	// relPath is the path relative to the scan root, slash-separated.
	relPath string

	// lines holds the file content split on newlines.
	lines []string
}

// walkFn receives each readable source file. Returning an error aborts
// the walk with that error.
type walkFn func(f sourceFile) error

// walkSourceTree walks root and invokes fn for every readable text file.
//
// # Description
//
// Directories in skipDirs and files with binary-looking extensions are
// skipped. Files that exist but cannot be read are reported through
// errs rather than aborting the walk, so one unreadable file never
// poisons the rest of the scan. Cancellation is checked between files.
//
// # Outputs
//
//   - errs: Non-fatal per-file problems, one message per file.
//   - error: ctx.Err() on cancellation, or a fatal walk error (for
//     example a root that does not exist).
func walkSourceTree(ctx context.Context, root string, fn walkFn) (errs []string, err error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			errs = append(errs, walkErr.Error())
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldSkipFile(name) {
			return nil
		}

		content, readErr := readFileCapped(path)
		if readErr != nil {
			errs = append(errs, readErr.Error())
			return nil
		}
		if !isLikelyText(content) {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			rel = path
		}

		return fn(sourceFile{
			relPath: filepath.ToSlash(rel),
			lines:   strings.Split(string(content), "\n"),
		})
	})
	return errs, err
}

func shouldSkipFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func readFileCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxReadBytes))
}

// isLikelyText rejects content with NUL bytes or a mostly invalid UTF-8
// prefix.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if bytes.IndexByte(buf, 0x00) >= 0 {
		return false
	}
	sample := buf
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	invalid := 0
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		sample = sample[size:]
	}
	return invalid < 8
}
