package exercise

import "strings"

// SupportedLanguages is the advertised highlighting/language catalog.
var SupportedLanguages = []string{
	"python", "javascript", "java", "cpp", "csharp", "php", "ruby", "go", "rust", "swift",
	"typescript", "kotlin", "scala", "perl", "bash", "sql", "html", "css", "xml", "json",
}

var languageNames = map[string]string{
	"python":     "Python",
	"javascript": "JavaScript",
	"java":       "Java",
	"cpp":        "C++",
	"csharp":     "C#",
	"php":        "PHP",
	"ruby":       "Ruby",
	"go":         "Go",
	"rust":       "Rust",
	"swift":      "Swift",
	"typescript": "TypeScript",
	"kotlin":     "Kotlin",
	"scala":      "Scala",
	"sql":        "SQL",
}

var languageExtensions = map[string]string{
	"python":     ".py",
	"javascript": ".js",
	"java":       ".java",
	"cpp":        ".cpp",
	"csharp":     ".cs",
	"php":        ".php",
	"ruby":       ".rb",
	"go":         ".go",
	"rust":       ".rs",
	"swift":      ".swift",
	"typescript": ".ts",
	"kotlin":     ".kt",
	"scala":      ".scala",
	"sql":        ".sql",
}

var difficultyDescriptions = map[string]string{
	"Easy":   "Beginner level - Basic concepts and simple implementations",
	"Medium": "Intermediate level - Moderate complexity with multiple concepts",
	"Hard":   "Advanced level - Complex problems requiring deep understanding",
}

func LanguageDisplayName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	if code == "" {
		return code
	}
	return strings.ToUpper(code[:1]) + code[1:]
}

func LanguageExtension(code string) string {
	if e, ok := languageExtensions[code]; ok {
		return e
	}
	return ".txt"
}

func DifficultyDescription(d string) string {
	if desc, ok := difficultyDescriptions[d]; ok {
		return desc
	}
	return "No description available"
}
