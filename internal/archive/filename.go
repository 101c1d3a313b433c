package archive

import (
	"regexp"
	"strings"
	"time"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

var (
	illegalNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	underscoreRuns   = regexp.MustCompile(`_+`)
)

// GenerateZipFilename returns "<SanitizedTitle>_<YYYY-MM-DD>.zip" for the day of now.
func GenerateZipFilename(title string, now time.Time) string {
	name := illegalNameChars.ReplaceAllString(title, "_")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.TrimPrefix(strings.TrimSuffix(name, "_"), "_")

	if runes := []rune(name); len(runes) > constants.ArchiveMaxNameRunes {
		name = string(runes[:constants.ArchiveMaxNameRunes])
	}
	if name == "" {
		name = constants.ArchiveFallbackName
	}

	return name + "_" + now.Format(constants.DateLayout) + constants.ArchiveExt
}
