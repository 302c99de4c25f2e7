package keyphrases

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
	"github.com/lehigh-university-libraries/nlpkit/internal/textsim"
)

const (
	yakeMaxNgram = 3
	yakeDedupLim = 0.9
)

// yakeTerm holds the statistics of one lower-cased word.
type yakeTerm struct {
	tf        float64
	tfAcronym float64
	tfUpper   float64
	sentences []int
	// co-occurrence counts with the word immediately left/right
	left     map[string]int
	right    map[string]int
	stopword bool
	number   bool
	h        float64
}

type yakeCandidate struct {
	key   string
	terms []string
	tf    float64
	first int
	score float64
}

// extractYake implements YAKE with a co-occurrence window of one word. Lower
// scores are better; near-duplicate phrases are dropped.
func extractYake(ctx context.Context, text string, count int) ([]string, error) {
	sentences, err := yakeSentences(text)
	if err != nil {
		return nil, err
	}

	terms := make(map[string]*yakeTerm)
	candidates := make(map[string]*yakeCandidate)
	order := 0

	for si, tokens := range sentences {
		var block []string
		flush := func() {
			addCandidates(candidates, terms, block, &order)
			block = nil
		}
		for pos, tok := range tokens {
			if isPunct(tok) {
				flush()
				continue
			}
			lower := strings.ToLower(tok)
			t, ok := terms[lower]
			if !ok {
				t = &yakeTerm{
					left:     make(map[string]int),
					right:    make(map[string]int),
					stopword: stopwords[lower] || utf8.RuneCountInString(lower) < 3,
					number:   isNumber(tok),
				}
				terms[lower] = t
			}
			t.tf++
			t.sentences = append(t.sentences, si)
			if isAcronym(tok) {
				t.tfAcronym++
			} else if pos > 0 && startsUpper(tok) {
				t.tfUpper++
			}
			if len(block) > 0 {
				prev := block[len(block)-1]
				t.left[prev]++
				terms[prev].right[lower]++
			}
			block = append(block, lower)
		}
		flush()
	}

	scoreTerms(terms, len(sentences))

	ranked := make([]*yakeCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.score = scoreCandidate(c, terms)
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].first < ranked[j].first
	})

	var phrases []string
	for _, c := range ranked {
		if len(phrases) == count {
			break
		}
		duplicate := false
		for _, kept := range phrases {
			if textsim.Similarity(c.key, kept) > yakeDedupLim {
				duplicate = true
				break
			}
		}
		if !duplicate {
			phrases = append(phrases, c.key)
		}
	}
	return phrases, nil
}

// yakeSentences splits text into sentences of tokens using prose.
func yakeSentences(text string) ([][]string, error) {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose failed: %w", err)
	}

	var sentences [][]string
	for _, s := range doc.Sentences() {
		sdoc, err := prose.NewDocument(s.Text, prose.WithSegmentation(false), prose.WithTagging(false), prose.WithExtraction(false))
		if err != nil {
			return nil, fmt.Errorf("prose failed: %w", err)
		}
		tokens := make([]string, 0, len(sdoc.Tokens()))
		for _, tok := range sdoc.Tokens() {
			tokens = append(tokens, tok.Text)
		}
		if len(tokens) > 0 {
			sentences = append(sentences, tokens)
		}
	}
	return sentences, nil
}

// addCandidates records every 1..3-gram of block that neither starts nor ends
// with a stopword and contains no numbers.
func addCandidates(candidates map[string]*yakeCandidate, terms map[string]*yakeTerm, block []string, order *int) {
	for i := range block {
		for n := 1; n <= yakeMaxNgram && i+n <= len(block); n++ {
			words := block[i : i+n]
			if terms[words[0]].stopword || terms[words[n-1]].stopword {
				continue
			}
			valid := true
			for _, w := range words {
				if terms[w].number {
					valid = false
					break
				}
			}
			if !valid {
				continue
			}

			key := strings.Join(words, " ")
			c, ok := candidates[key]
			if !ok {
				c = &yakeCandidate{key: key, terms: append([]string(nil), words...), first: *order}
				candidates[key] = c
				*order++
			}
			c.tf++
		}
	}
}

func scoreTerms(terms map[string]*yakeTerm, numSentences int) {
	var valid []float64
	maxTF := 0.0
	for _, t := range terms {
		if !t.stopword {
			valid = append(valid, t.tf)
		}
		maxTF = math.Max(maxTF, t.tf)
	}
	mean, std := meanStd(valid)
	if mean+std == 0 {
		return
	}

	for _, t := range terms {
		tCase := math.Max(t.tfAcronym, t.tfUpper) / (1 + math.Log(t.tf))
		tPos := math.Log(math.Log(3 + median(t.sentences)))
		tFreq := t.tf / (mean + std)
		tRel := 1 + (dispersion(t.left)+dispersion(t.right))*t.tf/maxTF
		tSent := float64(distinct(t.sentences)) / float64(numSentences)

		t.h = (tRel * tPos) / (tCase + tFreq/tRel + tSent/tRel)
	}
}

// scoreCandidate combines term scores. A stopword inside a phrase is weighed
// by how often it actually links its neighbours.
func scoreCandidate(c *yakeCandidate, terms map[string]*yakeTerm) float64 {
	prod, sum := 1.0, 0.0
	for i, w := range c.terms {
		t := terms[w]
		if !t.stopword {
			prod *= t.h
			sum += t.h
			continue
		}
		var probPrev, probNext float64
		if i > 0 {
			prev := c.terms[i-1]
			probPrev = float64(t.left[prev]) / terms[prev].tf
		}
		if i+1 < len(c.terms) {
			next := c.terms[i+1]
			probNext = float64(t.right[next]) / terms[next].tf
		}
		prob := probPrev * probNext
		prod *= 1 + (1 - prob)
		sum -= 1 - prob
	}
	return prod / ((sum + 1) * c.tf)
}

// dispersion is the ratio of distinct neighbours to all co-occurrences.
func dispersion(neighbours map[string]int) float64 {
	total := 0
	for _, n := range neighbours {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(len(neighbours)) / float64(total)
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func median(values []int) float64 {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func distinct(values []int) int {
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

func isPunct(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
	return err == nil
}

func isAcronym(tok string) bool {
	letters := 0
	for _, r := range tok {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}

func startsUpper(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsUpper(r)
}
