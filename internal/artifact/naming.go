package artifact

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
)

// dirNamePattern matches a scenario directory and captures ID and title part.
var dirNamePattern = regexp.MustCompile(`^(TS-\d{3})_(.+)$`)

// SanitizeTitle turns a free-text title into a directory-safe name.
// Accents are folded to their base letters, spaces become underscores,
// anything outside [A-Za-z0-9_-] is dropped, and the result is cut to
// constants.MaxDirNameLength bytes. A title with nothing usable left becomes
// constants.UntitledDirName.
func SanitizeTitle(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r == '_' || r == '-',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}

	name := b.String()
	if len(name) > constants.MaxDirNameLength {
		name = name[:constants.MaxDirNameLength]
	}
	if name == "" {
		return constants.UntitledDirName
	}
	return name
}

// DirName returns the directory name of a scenario.
func DirName(def domain.ScenarioDefinition) string {
	return def.ID + "_" + SanitizeTitle(def.Title)
}

// ParseDirName splits a scenario directory name into its ID and title part.
// The title part has underscores turned back into spaces.
func ParseDirName(name string) (id, title string, ok bool) {
	m := dirNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.ReplaceAll(m[2], "_", " "), true
}

// Paths lists every artifact location of one scenario.
type Paths struct {
	Dir        string
	Variants   string
	Metrics    string
	TestData   string
	ScriptsDir string
	Plan       string
}

// PathsFor returns the artifact locations of def under root.
func PathsFor(root string, def domain.ScenarioDefinition) Paths {
	return PathsIn(filepath.Join(root, DirName(def)))
}

// PathsIn returns the artifact locations inside an existing scenario directory.
func PathsIn(dir string) Paths {
	return Paths{
		Dir:        dir,
		Variants:   filepath.Join(dir, constants.VariantsFileName),
		Metrics:    filepath.Join(dir, constants.MetricsFileName),
		TestData:   filepath.Join(dir, constants.TestDataFileName),
		ScriptsDir: filepath.Join(dir, constants.ScriptsDirName),
		Plan:       filepath.Join(dir, constants.PlanFileName),
	}
}

// SummaryDir returns the summary directory that sits next to root.
func SummaryDir(root string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(root)), constants.SummaryDirName)
}
