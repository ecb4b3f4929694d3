// Package evaluator scores generated text (summaries, paraphrases,
// translations) against its source: smoothed BLEU overlap, perplexity under a
// causal language model and Flesch-Kincaid readability, plus an extended
// report with ROUGE and further readability indices.
//
// Heavy backends are built lazily through a shared cache so every model is
// loaded at most once per Engine, however many goroutines ask for it.
package evaluator
