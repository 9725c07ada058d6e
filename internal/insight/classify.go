package insight

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nhle/transcript-insights/internal/model"
)

// rule maps a label substring to a category.
type rule struct {
	substr   string
	category model.InsightCategory
}

// rules are checked in order; the first matching substring wins.
var rules = []rule{
	{substr: "action", category: model.CategoryAction},
	{substr: "sentiment", category: model.CategorySentiment},
	{substr: "emotion", category: model.CategorySentiment},
	{substr: "question", category: model.CategoryQuestion},
}

// Classify maps a free-text category label from the service onto the
// closed category set using case-insensitive substring matching.
func Classify(label string) model.InsightCategory {
	lower := strings.ToLower(label)
	for _, r := range rules {
		if strings.Contains(lower, r.substr) {
			return r.category
		}
	}
	return model.CategoryOther
}

// CategoryLabel returns the display label of a category: underscore
// separated words, each capitalized ("action" -> "Action").
func CategoryLabel(c model.InsightCategory) string {
	caser := cases.Title(language.English)
	words := strings.Split(string(c), "_")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
