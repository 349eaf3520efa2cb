package capability

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// BM25 parameters, standard values
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Retriever ranks reference passages for a query using BM25 over an
// in-memory index. The index is built once at construction and never
// mutated afterwards, so concurrent Invoke calls need no locking.
type Retriever struct {
	topK      int
	passages  []string
	terms     [][]string     // tokenized passages, same order
	docFreq   map[string]int // term -> number of passages containing it
	avgDocLen float64
}

// RetrieverOption configures a Retriever
type RetrieverOption func(*Retriever)

// WithTopK sets how many passages a query returns at most
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewRetriever builds an index over the given passages. Blank passages are
// skipped.
func NewRetriever(passages []string, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		topK:    5,
		docFreq: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}

	totalLen := 0
	for _, p := range passages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		toks := tokenize(p)
		r.passages = append(r.passages, p)
		r.terms = append(r.terms, toks)
		totalLen += len(toks)

		seen := make(map[string]bool, len(toks))
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				r.docFreq[t]++
			}
		}
	}
	if len(r.terms) > 0 {
		r.avgDocLen = float64(totalLen) / float64(len(r.terms))
	}
	return r
}

// NewRetrieverFromDir builds an index from every .txt and .md file under
// dir, splitting files into blank-line separated paragraphs. A missing
// directory yields an empty index rather than an error so the service can
// start before a corpus is provisioned.
func NewRetrieverFromDir(dir string, opts ...RetrieverOption) (*Retriever, error) {
	var passages []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read corpus file %s: %w", path, err)
		}
		passages = append(passages, splitParagraphs(string(data))...)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return NewRetriever(nil, opts...), nil
		}
		return nil, err
	}

	return NewRetriever(passages, opts...), nil
}

// Name implements Capability
func (r *Retriever) Name() string {
	return "retrieve_documents"
}

// Description implements Capability
func (r *Retriever) Description() string {
	return "Retrieve relevant medical reference passages from the local corpus"
}

// Size returns the number of indexed passages
func (r *Retriever) Size() int {
	return len(r.passages)
}

// Invoke ranks the indexed passages against q.Question and returns the top
// K as a ResultPassages ToolResult. Results are deterministic for an
// unchanged index: ties are broken by passage order. No network I/O.
func (r *Retriever) Invoke(ctx context.Context, q Query) (*ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(r.Name(), KindTimeout, err)
	}

	queryTerms := tokenize(q.Question)

	type scored struct {
		idx   int
		score float64
	}
	var ranked []scored
	for i := range r.terms {
		s := r.score(queryTerms, i)
		if s > 0 {
			ranked = append(ranked, scored{idx: i, score: s})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}

	result := &ToolResult{Kind: ResultPassages}
	for _, s := range ranked {
		result.Passages = append(result.Passages, Passage{
			Text: r.passages[s.idx],
			// Raw BM25 scores are unbounded; s/(s+1) maps them
			// monotonically into [0,1).
			Score: s.score / (s.score + 1),
		})
	}
	return result, nil
}

// score computes the BM25 score of passage i for the query terms
func (r *Retriever) score(queryTerms []string, i int) float64 {
	docTerms := r.terms[i]
	docLen := float64(len(docTerms))
	n := float64(len(r.terms))

	tf := make(map[string]int, len(docTerms))
	for _, t := range docTerms {
		tf[t]++
	}

	var total float64
	for _, qt := range queryTerms {
		f := float64(tf[qt])
		if f == 0 {
			continue
		}
		df := float64(r.docFreq[qt])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		total += idf * (f * (bm25K1 + 1)) / (f + bm25K1*(1-bm25B+bm25B*docLen/r.avgDocLen))
	}
	return total
}

// tokenize lowercases and splits on non-alphanumeric runes
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// splitParagraphs splits text on blank lines, trimming each paragraph
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}
