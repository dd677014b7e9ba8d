package knowledge

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// backToMainPhrase is the navigation label fragment stripped from lookup keys.
const backToMainPhrase = "назад в главное меню"

// decorations lists glyphs that menu labels carry but stored keys usually do not.
// U+FE0F is the emoji presentation selector that follows some of them.
var decorations = []string{
	"🔙", "📚", "💪", "🙆", "🥗", "🔬", "🎓", "🛠", "❓", "🏠", "🔧", "📝", "❌",
	"\ufe0f", "*", "_", "`", "[", "]", "\\",
}

var (
	decorationStripper = newDecorationStripper()

	// phraseRewrites maps label variants onto the form used by stored keys.
	phraseRewrites = strings.NewReplacer(
		backToMainPhrase, "",
		"система сеплица: основы", "система сеплица основы",
	)
)

func newDecorationStripper() *strings.Replacer {
	pairs := make([]string, 0, len(decorations)*2)
	for _, d := range decorations {
		pairs = append(pairs, d, "")
	}

	return strings.NewReplacer(pairs...)
}

// Normalize folds a label into its lookup form: lower-cased, decorative glyphs and
// the "back to main menu" phrase removed, whitespace collapsed.
func Normalize(key string) string {
	if key == "" {
		return ""
	}

	// cases.Caser is stateful and not safe for concurrent use.
	normalized := cases.Lower(language.Russian).String(strings.TrimSpace(key))
	normalized = collapseSpaces(decorationStripper.Replace(normalized))

	// Removing a phrase can expose another one. Every rewrite shortens the text.
	for {
		rewritten := collapseSpaces(phraseRewrites.Replace(normalized))
		if rewritten == normalized {
			return normalized
		}

		normalized = rewritten
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
