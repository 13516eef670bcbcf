package walker

import (
	"path/filepath"
	"strings"
)

// Languages recognised by the extractors.
const (
	LangGo         = "Go"
	LangTypeScript = "TypeScript"
	LangJavaScript = "JavaScript"
	LangJava       = "Java"
	LangKotlin     = "Kotlin"
	LangSQL        = "SQL"
	LangMarkdown   = "Markdown"
	LangYAML       = "YAML"
	LangJSON       = "JSON"
	LangUnknown    = "unknown"
)

var extensionToLanguage = map[string]string{
	".go":       LangGo,
	".ts":       LangTypeScript,
	".tsx":      LangTypeScript,
	".mts":      LangTypeScript,
	".js":       LangJavaScript,
	".jsx":      LangJavaScript,
	".mjs":      LangJavaScript,
	".cjs":      LangJavaScript,
	".java":     LangJava,
	".kt":       LangKotlin,
	".kts":      LangKotlin,
	".sql":      LangSQL,
	".md":       LangMarkdown,
	".markdown": LangMarkdown,
	".yaml":     LangYAML,
	".yml":      LangYAML,
	".json":     LangJSON,
}

// DetectLanguage returns the language for a given filename based on its
// extension. Returns "unknown" for unrecognized files. Type declaration
// files (.d.ts) are not treated as TypeScript sources.
func DetectLanguage(filename string) string {
	base := filepath.Base(filename)
	if strings.HasSuffix(strings.ToLower(base), ".d.ts") {
		return LangUnknown
	}
	ext := strings.ToLower(filepath.Ext(base))
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return LangUnknown
}
