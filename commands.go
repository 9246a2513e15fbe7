package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
	"github.com/hickeroar/sentibayes/tokenizer"
)

var stdout io.Writer = os.Stdout

var (
	errNoTrainingFile = errors.New("a training corpus (-train) is required")
	errNoTestFile     = errors.New("a test corpus (-test) is required")
	errNoModelSource  = errors.New("either -model or -train is required")
	errNoText         = errors.New("no text to classify")
)

// newCommand builds the sentibayes command tree.
func newCommand() *commander.Command {
	return &commander.Command{
		UsageLine: "sentibayes <command> [options]",
		Short:     "naive Bayes sentiment classifier",
		Subcommands: []*commander.Command{
			newFeaturesCommand(),
			newTrainCommand(),
			newEvaluateCommand(),
			newClassifyCommand(),
			newServeCommand(),
		},
		Flag: *flag.NewFlagSet("sentibayes", flag.ExitOnError),
	}
}

// pipeline holds the flags shared by every command that reads a corpus.
type pipeline struct {
	train     string
	stopwords string
	stem      string
	html      bool
	lenient   bool
	model     string
	labels    string
}

func (p *pipeline) registerCorpusFlags(fs *flag.FlagSet) {
	fs.StringVar(&p.train, "train", "", "Training corpus, one '<text> __label__<label>' record per line")
	fs.StringVar(&p.stopwords, "stopwords", "", "Optional - comma-separated stop-word file")
	fs.StringVar(&p.stem, "stem", "", "Optional - Snowball stemming language (english, spanish, ...)")
	fs.BoolVar(&p.html, "html", false, "Strip HTML markup from record text")
	fs.BoolVar(&p.lenient, "lenient", false, "Skip malformed records instead of failing")
}

func (p *pipeline) registerModelFlags(fs *flag.FlagSet) {
	fs.StringVar(&p.model, "model", "", "Saved model file")
	fs.StringVar(&p.labels, "labels", "", "Optional - JSON file of label descriptions")
}

func (p *pipeline) readerOptions() []corpus.Option {
	opts := []corpus.Option{corpus.WithStrictParsing(!p.lenient)}
	if p.html {
		opts = append(opts, corpus.WithMarkupStripping())
	}
	return opts
}

func (p *pipeline) analyzer() (*tokenizer.Analyzer, error) {
	stopwords := tokenizer.NewStopwordSet()
	if p.stopwords != "" {
		loaded, err := tokenizer.LoadStopwords(p.stopwords)
		if err != nil {
			return nil, err
		}
		stopwords = loaded
		log.Printf("Loaded %d stop words from %s.", stopwords.Len(), p.stopwords)
	}

	var opts []tokenizer.Option
	if p.stem != "" {
		opts = append(opts, tokenizer.WithStemming(p.stem))
	}
	return tokenizer.NewAnalyzer(stopwords, opts...)
}

// trainer aggregates the training corpus.
func (p *pipeline) trainer() (*bayes.Trainer, error) {
	if p.train == "" {
		return nil, errNoTrainingFile
	}

	analyzer, err := p.analyzer()
	if err != nil {
		return nil, err
	}

	src, err := corpus.Open(p.train, p.readerOptions()...)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	trainer := bayes.NewTrainer(analyzer)
	n, err := trainer.Consume(src)
	if err != nil {
		return nil, err
	}
	if skipped := src.Skipped(); skipped > 0 {
		log.Printf("Skipped %d malformed records in %s.", skipped, p.train)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", p.train, bayes.ErrEmptyCorpus)
	}
	log.Printf("Trained %d documents across %d labels.", n, trainer.Table().Len())

	return trainer, nil
}

// classifier loads -model, or trains from -train when no model is given.
func (p *pipeline) classifier() (*bayes.Classifier, error) {
	if p.model != "" {
		path, err := filepath.Abs(p.model)
		if err != nil {
			return nil, err
		}
		return bayes.LoadFromFile(path)
	}
	if p.train == "" {
		return nil, errNoModelSource
	}

	trainer, err := p.trainer()
	if err != nil {
		return nil, err
	}
	return trainer.Classifier()
}

func (p *pipeline) descriptions() (corpus.Descriptions, error) {
	if p.labels == "" {
		return corpus.Descriptions{}, nil
	}
	return corpus.LoadDescriptions(p.labels)
}

func newFeaturesCommand() *commander.Command {
	p := &pipeline{}
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			trainer, err := p.trainer()
			if err != nil {
				return err
			}
			return writeFeatureListing(stdout, trainer.Table())
		},
		UsageLine: "features -train <file> [options]",
		Short:     "lists token frequencies per label",
		Long: `
lists every label's tokens by descending frequency

	$ sentibayes features -train train.txt [-stopwords stopwords.txt] [-html]
`,
		Flag: *flag.NewFlagSet("features", flag.ExitOnError),
	}
	p.registerCorpusFlags(&cmd.Flag)
	return cmd
}

func newTrainCommand() *commander.Command {
	p := &pipeline{}
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			trainer, err := p.trainer()
			if err != nil {
				return err
			}
			classifier, err := trainer.Classifier()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(p.model)
			if err != nil {
				return err
			}
			if err := classifier.SaveToFile(path); err != nil {
				return err
			}
			log.Printf("Model with %d labels saved to %s.", len(classifier.Labels()), path)
			return nil
		},
		UsageLine: "train -train <file> -model <file> [options]",
		Short:     "trains a model and saves it",
		Long: `
trains a model from a labeled corpus and saves it with gob encoding

	$ sentibayes train -train train.txt -model model.gob [-stopwords stopwords.txt] [-stem english]
`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	p.registerCorpusFlags(&cmd.Flag)
	cmd.Flag.StringVar(&p.model, "model", "sentibayes.gob", "Output model file")
	return cmd
}

func newEvaluateCommand() *commander.Command {
	p := &pipeline{}
	var (
		test    string
		verbose bool
	)
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if test == "" {
				return errNoTestFile
			}
			classifier, err := p.classifier()
			if err != nil {
				return err
			}
			descriptions, err := p.descriptions()
			if err != nil {
				return err
			}

			src, err := corpus.Open(test, p.readerOptions()...)
			if err != nil {
				return err
			}
			defer src.Close()

			var writeErr error
			eval, err := bayes.Evaluate(classifier, src, func(prediction bayes.Prediction) {
				if verbose && writeErr == nil {
					writeErr = writePrediction(stdout, prediction, descriptions)
				}
			})
			if err != nil {
				return err
			}
			if writeErr != nil {
				return writeErr
			}

			if err := writeAccuracy(stdout, eval); err != nil {
				return err
			}
			if verbose {
				return writeConfusion(stdout, eval, classifier.Labels(), descriptions)
			}
			return nil
		},
		UsageLine: "evaluate -test <file> (-model <file> | -train <file>) [options]",
		Short:     "measures accuracy on a labeled test corpus",
		Long: `
classifies every record of a test corpus and prints the accuracy

	$ sentibayes evaluate -model model.gob -test test.txt [-labels labels.json] [-v]
	$ sentibayes evaluate -train train.txt -stopwords stopwords.txt -test test.txt
`,
		Flag: *flag.NewFlagSet("evaluate", flag.ExitOnError),
	}
	p.registerCorpusFlags(&cmd.Flag)
	p.registerModelFlags(&cmd.Flag)
	cmd.Flag.StringVar(&test, "test", "", "Test corpus")
	cmd.Flag.BoolVar(&verbose, "v", false, "Print every prediction and a confusion table")
	return cmd
}

func newClassifyCommand() *commander.Command {
	p := &pipeline{}
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errNoText
			}
			classifier, err := p.classifier()
			if err != nil {
				return err
			}
			descriptions, err := p.descriptions()
			if err != nil {
				return err
			}
			return writeClassification(stdout, classifier.Classify(text), descriptions)
		},
		UsageLine: "classify (-model <file> | -train <file>) <text>",
		Short:     "classifies a piece of text",
		Long: `
prints the most likely label of the given text

	$ sentibayes classify -model model.gob -labels labels.json "what a great film"
`,
		Flag: *flag.NewFlagSet("classify", flag.ExitOnError),
	}
	p.registerCorpusFlags(&cmd.Flag)
	p.registerModelFlags(&cmd.Flag)
	return cmd
}

func newServeCommand() *commander.Command {
	p := &pipeline{}
	var port, authToken string
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			api, err := p.api()
			if err != nil {
				return err
			}
			return runServer(api, port, authToken)
		},
		UsageLine: "serve [-port 8000] [-model <file> | -train <file>] [options]",
		Short:     "serves the classifier over HTTP",
		Long: `
serves the classifier's JSON API; with -model the API is read-only,
otherwise it accepts training through /train/<label>

	$ sentibayes serve -port 8000 -train train.txt -auth-token secret
`,
		Flag: *flag.NewFlagSet("serve", flag.ExitOnError),
	}
	p.registerCorpusFlags(&cmd.Flag)
	cmd.Flag.StringVar(&p.model, "model", "", "Saved model file")
	cmd.Flag.StringVar(&port, "port", "8000", "The port the server should listen on.")
	cmd.Flag.StringVar(&authToken, "auth-token", "", "Optional - bearer token required on all endpoints but health checks")
	return cmd
}

// api builds the server state for serve.
func (p *pipeline) api() (*ClassifierAPI, error) {
	if p.model != "" {
		classifier, err := p.classifier()
		if err != nil {
			return nil, err
		}
		return NewModelAPI(classifier), nil
	}

	if p.train != "" {
		trainer, err := p.trainer()
		if err != nil {
			return nil, err
		}
		return NewTrainableAPI(trainer), nil
	}

	analyzer, err := p.analyzer()
	if err != nil {
		return nil, err
	}
	return NewTrainableAPI(bayes.NewTrainer(analyzer)), nil
}
