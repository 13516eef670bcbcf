package walker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxFileSize is the maximum file size read during extraction (500 KiB).
const DefaultMaxFileSize int64 = 500 * 1024

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path     string // Absolute path on disk.
	RelPath  string // Slash-separated path relative to the root directory.
	Size     int64  // File size in bytes.
	Language string // Detected language.
	IsTest   bool   // Whether the file appears to be a test file.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string
	Languages   []string               // Only files of these languages are returned (empty = all).
	Match       func(relPath string) bool // Optional extra predicate on the relative path.
	Exclude     []string               // Glob patterns; matching directories and files are skipped.
	MaxFileSize int64                  // Files larger than this are skipped (0 = use default).
	SkipTests   bool                   // Skip files that look like tests.
}

// Walk traverses the directory tree rooted at config.RootDir depth-first in
// lexical order and returns every file that passes filtering. Hidden and
// default-excluded directories are pruned, binary files are skipped and the
// root .gitignore is honoured. A missing root yields no files and no error.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	langs := make(map[string]bool, len(config.Languages))
	for _, l := range config.Languages {
		langs[l] = true
	}

	gi := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if ShouldExcludeDir(name) || MatchesExclude(relPath, config.Exclude) {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		lang := DetectLanguage(name)
		if len(langs) > 0 && !langs[lang] {
			return nil
		}
		if config.Match != nil && !config.Match(relPath) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relPath) {
			return nil
		}
		if MatchesExclude(relPath, config.Exclude) {
			return nil
		}
		isTest := isTestFile(name, relPath)
		if config.SkipTests && isTest {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     path,
			RelPath:  relPath,
			Size:     info.Size(),
			Language: lang,
			IsTest:   isTest,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// ReadFile returns the content of path as a string, refusing files larger
// than maxSize (0 = use default).
func ReadFile(path string, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > maxSize {
		return "", fmt.Errorf("walker: %s exceeds %d bytes", path, maxSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// isTestFile returns true if the filename or path looks like a test file.
func isTestFile(name, relPath string) bool {
	lower := strings.ToLower(name)

	if strings.HasSuffix(lower, "_test.go") {
		return true
	}
	for _, suffix := range []string{".test.js", ".test.ts", ".test.tsx", ".spec.js", ".spec.ts", ".spec.tsx", "test.kt", "test.java", "tests.kt", "tests.java"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	relSlash := strings.ToLower(relPath)
	for _, dir := range []string{"test/", "tests/", "__tests__/", "src/test/"} {
		if strings.HasPrefix(relSlash, dir) || strings.Contains(relSlash, "/"+dir) {
			return true
		}
	}
	return false
}

// loadGitignore compiles the .gitignore at path, or returns nil.
func loadGitignore(path string) *ignore.GitIgnore {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
