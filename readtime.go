package spacetraveling

import "strings"

const wordsPerMinute = 200

// ReadTimeMinutes estimates reading time as ceil(words / 200). Words are the
// pieces left after splitting each heading and each text unit on a single
// space, so runs of spaces count as extra words. Units without text (images,
// embeds) count zero.
func ReadTimeMinutes(content []ContentBlock) int {
	total := 0
	for _, block := range content {
		total += len(strings.Split(block.Heading, " "))
		for _, unit := range block.Body {
			if !unit.IsText() {
				continue
			}
			total += len(strings.Split(unit.Text, " "))
		}
	}
	return (total + wordsPerMinute - 1) / wordsPerMinute
}
