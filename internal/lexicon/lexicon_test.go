package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_ExactMatch(t *testing.T) {
	lex := Default()
	assert.Equal(t, "løg", lex.Translate("onion"))
	assert.Equal(t, "løg", lex.Translate("Onions"))
	assert.Equal(t, "hakket oksekød", lex.Translate("ground beef"))
}

func TestTranslate_PhraseSubstring(t *testing.T) {
	lex := Default()
	// "chilled white wine" contains the known phrase "white wine".
	assert.Equal(t, "hvidvin", lex.Translate("chilled white wine"))
}

func TestTranslate_PerWordFallback(t *testing.T) {
	lex := Default()
	// No phrase match; "cloves garlic" falls back to the word "garlic".
	assert.Equal(t, "hvidløg", lex.Translate("peeled garlic"))
}

func TestTranslate_Unknown(t *testing.T) {
	lex := Default()
	assert.Equal(t, "", lex.Translate("rhubarb"))
}

func TestContextQuery(t *testing.T) {
	lex := Default()
	assert.Equal(t, "madlavningsfløde", lex.ContextQuery("fløde", "pasta carbonara"))
	assert.Equal(t, "revet ost", lex.ContextQuery("ost", "Taco fredag"))
	assert.Equal(t, "", lex.ContextQuery("ost", "lasagne"))
	assert.Equal(t, "", lex.ContextQuery("ost", ""))
}

func TestSingular(t *testing.T) {
	lex := Default()
	assert.Equal(t, "onion", lex.Singular("onions"))
	assert.Equal(t, "gulerod", lex.Singular("gulerødder"))
	assert.Equal(t, "flour", lex.Singular("flour"))
}

func TestContainsAny(t *testing.T) {
	kw, ok := ContainsAny("økologisk sødmælk 1 l", []string{"fløde", "mælk"})
	require.True(t, ok)
	assert.Equal(t, "mælk", kw)

	_, ok = ContainsAny("rugbrød", []string{"mælk"})
	assert.False(t, ok)
}

func TestApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `
translations:
  rhubarb: rabarber
term_improvements:
  ris: grødris
allergen_keywords:
  nuts:
    - nougat
filler_words:
  - lun
context_overrides:
  - ingredient: ris
    context: risotto
    query: arborioris
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lex := Default()
	require.NoError(t, lex.ApplyOverrides(path))

	assert.Equal(t, "rabarber", lex.Translate("rhubarb"))
	assert.Equal(t, "grødris", lex.TermImprovements["ris"])
	assert.Contains(t, lex.AllergenKeywords["nuts"], "nougat")
	assert.Contains(t, lex.AllergenKeywords["nuts"], "mandel") // defaults kept
	assert.Contains(t, lex.FillerWords, "lun")
	assert.Equal(t, "arborioris", lex.ContextQuery("ris", "risotto milanese"))
}

func TestApplyOverrides_MissingFile(t *testing.T) {
	lex := Default()
	err := lex.ApplyOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
