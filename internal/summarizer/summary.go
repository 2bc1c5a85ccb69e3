package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Summarize picks the maxSentences sentences of text whose words are most
// frequent across the whole text and returns them in reading order.
// Stopwords in Portuguese and English do not count.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.Join(strings.Fields(text), " ")
	}

	freq := map[string]float64{}
	var maxF float64
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, stop := stopwords[tok]; stop {
				continue
			}
			freq[tok]++
			maxF = math.Max(maxF, freq[tok])
		}
	}

	if maxF == 0 {
		maxF = 1
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		var sum float64
		for _, tok := range toks {
			sum += freq[tok] / maxF
		}
		// long sentences should not win on length alone
		if len(toks) > 0 {
			sum /= math.Sqrt(float64(len(toks)))
		}
		ranked[i] = scored{i, sum}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := min(maxSentences, len(ranked))
	picked := make([]int, n)
	for i := range picked {
		picked[i] = ranked[i].idx
	}
	sort.Ints(picked)
	out := make([]string, n)
	for i, idx := range picked {
		out[i] = strings.Join(strings.Fields(sentences[idx]), " ")
	}
	return strings.Join(out, " ")
}

func tokens(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
		a o as os um uma uns umas de do da dos das em no na nos nas por pelo pela pelos pelas
		para com sem sob sobre entre e ou mas se que quem qual quais como quando onde porque
		é são foi foram ser está estão era eram há ao aos à às seu sua seus suas ele ela eles
		elas isso isto esse essa este esta não sim mais menos muito também já
		an the and or but if then for to of in on at by with as is are was were be been it
		this that these those from into about than so such can will should`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
