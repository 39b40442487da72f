package translate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/openlocalize/polyloc/batch"
	"github.com/openlocalize/polyloc/jsonfile"
	"github.com/openlocalize/polyloc/keep"
)

// ---------------------------------------------------------------------------
// Orchestration
// ---------------------------------------------------------------------------

// Options controls an orchestration run.
type Options struct {
	// MaxRequestBytes is the provider request ceiling (default 128 KiB).
	MaxRequestBytes int
	// OverheadBytes is reserved for request framing (default 2 KiB).
	OverheadBytes int
	// KeepStart/KeepEnd are the literal do-not-translate tags for
	// flat-document mode. Empty means no tag masking.
	KeepStart string
	KeepEnd   string
	// MaxConcurrent caps concurrently processed languages (0 = unlimited).
	MaxConcurrent int
	// OnProgress is called after each translated batch.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Result is the outcome of one target language's pipeline. Failures are
// isolated per language: one language's error never blocks or corrupts
// the others.
type Result struct {
	Lang string
	// Document is the reconstructed object (structured mode).
	Document *jsonfile.Object
	// Text is the translated blob (flat-document mode).
	Text string
	Err  error
}

// Job runs translation pipelines over a set of target languages.
type Job struct {
	Client  *Client
	Options Options
}

func (j *Job) textBudget() int {
	return batch.TextBudget(j.Options.MaxRequestBytes, j.Options.OverheadBytes)
}

// TranslateDocument translates every string leaf of a nested locale
// document into each target language. Languages run concurrently and are
// joined before returning; the result slice is index-aligned with langs.
func (j *Job) TranslateDocument(ctx context.Context, doc any, langs []string) []Result {
	keys, values := jsonfile.Flatten(doc)

	masked := make([]string, len(values))
	for i, v := range values {
		masked[i] = keep.MaskPlaceholders(v)
	}
	batches := batch.ByBytes(masked, j.textBudget())

	results := make([]Result, len(langs))

	var g errgroup.Group
	if j.Options.MaxConcurrent > 0 {
		g.SetLimit(j.Options.MaxConcurrent)
	}
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			// Each language owns results[i] exclusively; failures are
			// recorded there, never returned, so siblings keep running.
			results[i] = j.translateLang(ctx, lang, keys, batches, len(masked))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// translateLang runs one language's batch sequence in order and rebuilds
// the nested document. Batch results are appended by batch index, so the
// reassembled list always matches the original key order.
func (j *Job) translateLang(ctx context.Context, lang string, keys []string, batches [][]string, total int) Result {
	res := Result{Lang: lang}

	translated := make([]string, 0, total)
	done := 0

	for bi, b := range batches {
		out, err := j.Client.TranslateBatch(ctx, b, lang)
		if err != nil {
			res.Err = fmt.Errorf("%s: batch %d/%d: %w", lang, bi+1, len(batches), err)
			return res
		}
		translated = append(translated, out...)

		done += len(b)
		if j.Options.OnProgress != nil {
			j.Options.OnProgress(lang, done, total)
		}
	}

	if len(translated) != total {
		res.Err = fmt.Errorf("%s: got %d translations for %d strings", lang, len(translated), total)
		return res
	}

	for i, s := range translated {
		translated[i] = keep.Unmask(s)
	}

	doc, err := jsonfile.Rebuild(keys, translated)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", lang, err)
		return res
	}
	res.Document = doc

	return res
}

// TranslateText translates a flat document blob into each target language.
// Configured keep tags are masked before the call and stripped after. A
// provider returning no text is a recoverable skip for that language only.
func (j *Job) TranslateText(ctx context.Context, text string, langs []string) []Result {
	masked := keep.MaskTags(text, j.Options.KeepStart, j.Options.KeepEnd)

	results := make([]Result, len(langs))

	var g errgroup.Group
	if j.Options.MaxConcurrent > 0 {
		g.SetLimit(j.Options.MaxConcurrent)
	}
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			res := Result{Lang: lang}

			out, err := j.Client.TranslateBatch(ctx, []string{masked}, lang)
			switch {
			case err != nil:
				res.Err = fmt.Errorf("%s: %w", lang, err)
			case strings.TrimSpace(out[0]) == "":
				j.Options.log("no translation returned for %s, skipping", lang)
				res.Err = fmt.Errorf("%s: %w", lang, ErrEmptyTranslation)
			default:
				res.Text = keep.Unmask(out[0])
			}

			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
