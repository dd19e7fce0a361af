package service

import (
	"strings"
	"unicode/utf8"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/healthyrecipes/backend/internal/types"
)

// EmbeddingDimensions must match the vector column in migrations/
const EmbeddingDimensions = 3

// GenerateEmbedding maps text to [runes, vowels, consonants] after lowercasing and collapsing whitespace.
// Queries and stored recipes go through the same function so distances are comparable.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))

	var vowels, consonants float32
	for _, r := range text {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(utf8.RuneCountInString(text)), vowels, consonants})
}

// RecipeEmbedding is the search vector stored with a saved recipe
func RecipeEmbedding(r types.Recipe) pgvector.Vector {
	return GenerateEmbedding(r.Title + " " + r.Description)
}
