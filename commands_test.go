package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
)

const trainingCorpus = `a wonderful film with great acting __label__pos
great story and wonderful music __label__pos

an awful film with terrible acting __label__neg
boring story and awful music __label__neg
`

const testCorpus = `wonderful acting __label__pos
terrible boring film __label__neg
great music __label__neg
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// captureStdout redirects command output into a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := stdout
	buf := &bytes.Buffer{}
	stdout = buf
	t.Cleanup(func() { stdout = old })
	return buf
}

func TestFeaturesCommandListsFrequencies(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	stop := writeFile(t, dir, "stop.txt", "a, an, with, and")
	out := captureStdout(t)

	require.NoError(t, newCommand().Dispatch([]string{"features", "-train", train, "-stopwords", stop}))

	listing := out.String()
	assert.True(t, strings.HasPrefix(listing, "\nLabel: __label__pos\nwonderful: 2\n"), listing)
	assert.Contains(t, listing, "\nLabel: __label__neg\nawful: 2\n")
	assert.NotContains(t, listing, "with:")
}

func TestFeaturesCommandRequiresTrainingFile(t *testing.T) {
	captureStdout(t)
	err := newCommand().Dispatch([]string{"features"})
	assert.ErrorIs(t, err, errNoTrainingFile)
}

func TestFeaturesCommandStrictAndLenientParsing(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus+"no marker on this line\n")
	captureStdout(t)

	err := newCommand().Dispatch([]string{"features", "-train", train})
	assert.ErrorIs(t, err, corpus.ErrMalformedRecord)

	require.NoError(t, newCommand().Dispatch([]string{"features", "-train", train, "-lenient"}))
}

func TestFeaturesCommandStripsMarkup(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", "<b>great</b> film<br/> __label__pos\n")
	out := captureStdout(t)

	require.NoError(t, newCommand().Dispatch([]string{"features", "-train", train, "-html"}))
	assert.Equal(t, "\nLabel: __label__pos\ngreat: 1\nfilm: 1\n", out.String())
}

func TestTrainThenEvaluateFromModel(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	test := writeFile(t, dir, "test.txt", testCorpus)
	labels := writeFile(t, dir, "labels.json", `{"pos": "Positive", "__label__neg": "Negative"}`)
	model := filepath.Join(dir, "model.gob")
	out := captureStdout(t)

	require.NoError(t, newCommand().Dispatch([]string{"train", "-train", train, "-model", model}))

	loaded, err := bayes.LoadFromFile(model)
	require.NoError(t, err)
	assert.Equal(t, []string{"__label__pos", "__label__neg"}, loaded.Labels())

	require.NoError(t, newCommand().Dispatch([]string{"evaluate", "-model", model, "-test", test, "-labels", labels, "-v"}))

	report := out.String()
	assert.Contains(t, report, "[ok] predicted Positive, expected Positive: wonderful acting")
	assert.Contains(t, report, "[miss] predicted Positive, expected Negative: great music")
	assert.Contains(t, report, "Accuracy: 66.67% (2/3)\n")
	assert.Contains(t, report, "Negative: Positive=1 Negative=1\n")
}

func TestEvaluateTrainsWhenNoModelGiven(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	test := writeFile(t, dir, "test.txt", testCorpus)
	out := captureStdout(t)

	require.NoError(t, newCommand().Dispatch([]string{"evaluate", "-train", train, "-test", test}))
	assert.Equal(t, "Accuracy: 66.67% (2/3)\n", out.String())
}

func TestEvaluateCommandErrors(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	empty := writeFile(t, dir, "empty.txt", "\n\n")
	captureStdout(t)

	assert.ErrorIs(t, newCommand().Dispatch([]string{"evaluate", "-train", train}), errNoTestFile)
	assert.ErrorIs(t, newCommand().Dispatch([]string{"evaluate", "-test", empty}), errNoModelSource)
	assert.ErrorIs(t, newCommand().Dispatch([]string{"evaluate", "-train", train, "-test", empty}), bayes.ErrEmptyCorpus)
	assert.ErrorIs(t, newCommand().Dispatch([]string{"evaluate", "-train", empty, "-test", train}), bayes.ErrEmptyCorpus)
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	out := captureStdout(t)

	require.NoError(t, newCommand().Dispatch([]string{"classify", "-train", train, "-stem", "english", "terrible", "acting"}))
	assert.True(t, strings.HasPrefix(out.String(), "__label__neg (__label__neg) score="), out.String())

	assert.ErrorIs(t, newCommand().Dispatch([]string{"classify", "-train", train}), errNoText)
}

func TestUnknownStemLanguageFails(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.txt", trainingCorpus)
	captureStdout(t)

	assert.Error(t, newCommand().Dispatch([]string{"features", "-train", train, "-stem", "klingon"}))
}
