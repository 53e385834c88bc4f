package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCensoredWords(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()
	req.NoError(err)

	// Both embedded language files contribute
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")
	req.NotEmpty(data.Words)

	// Words are unique
	seen := make(map[string]struct{}, len(data.Words))
	for _, word := range data.Words {
		_, duplicate := seen[word]
		req.False(duplicate, word)
		seen[word] = struct{}{}
	}
}
