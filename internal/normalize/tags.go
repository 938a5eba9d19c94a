package normalize

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// NormalizeTags merges feed categories with the source's manual tags, then
// lowercases, trims, drops empties, dedupes and sorts. Manual tags always
// apply, not only when the feed has no categories.
func NormalizeTags(categories, manual []string) []string {
	all := make([]string, 0, len(categories)+len(manual))
	all = append(all, categories...)
	all = append(all, manual...)

	cleaned := lo.FilterMap(all, func(tag string, _ int) (string, bool) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		return tag, tag != ""
	})

	tags := lo.Uniq(cleaned)
	sort.Strings(tags)
	return tags
}
