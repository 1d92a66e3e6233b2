// Package lexicon loads the candidate word list and assigns every word a
// difficulty score derived from corpus letter and bigram statistics. The
// lexicon is built once at startup and shared read-only afterwards.
package lexicon

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon maps each candidate word to its difficulty score.
// Higher scores mean rarer/harder words.
type Lexicon map[string]float64

// Weights are the fixed coefficients of the difficulty scorer. The defaults
// are load-bearing: changing them changes every score in the lexicon.
type Weights struct {
	RareLetter float64 `yaml:"rareLetter"` // ln(1/freq) per letter
	RareBoost  float64 `yaml:"rareBoost"`  // extra for j q x z k v w y, per letter
	RareBigram float64 `yaml:"rareBigram"` // ln(1/freq) per adjacent bigram

	NoVowelsY      float64 `yaml:"noVowelsY"` // none of aeiouy
	NoVowels       float64 `yaml:"noVowels"`  // none of aeiou (y allowed)
	LowVowelRatio  float64 `yaml:"lowVowelRatio"`
	AdjDouble      float64 `yaml:"adjDouble"` // adjacent doubled letters
	MaxConsCluster float64 `yaml:"maxConsCluster"`
	DupExtra       float64 `yaml:"dupExtra"` // per extra occurrence of a letter
	LowUnique      float64 `yaml:"lowUnique"`
	Ababa          float64 `yaml:"ababa"` // positions 0=2=4, 1=3, 0!=1
	RepeatedBigram float64 `yaml:"repeatedBigram"`
	QWithoutU      float64 `yaml:"qWithoutU"`
}

func DefaultWeights() Weights {
	return Weights{
		RareLetter:     0.35,
		RareBoost:      0.25,
		RareBigram:     0.20,
		NoVowelsY:      9.0,
		NoVowels:       5.0,
		LowVowelRatio:  2.0,
		AdjDouble:      1.0,
		MaxConsCluster: 1.0,
		DupExtra:       1.6,
		LowUnique:      0.7,
		Ababa:          3.0,
		RepeatedBigram: 1.2,
		QWithoutU:      2.0,
	}
}

// LoadWeights reads a YAML override file on top of the defaults. Keys the
// file does not mention keep their default values.
func LoadWeights(path string) (Weights, error) {
	wt := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return wt, fmt.Errorf("read weights %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &wt); err != nil {
		return wt, fmt.Errorf("parse weights %s: %w", path, err)
	}
	return wt, nil
}

// Build reads one candidate per line from path, keeps tokens that normalize
// to exactly 5 ASCII lowercase letters, and scores every surviving word
// against corpus statistics computed over the whole filtered set.
func Build(path string, wt Weights) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if isCandidate(w) {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	st := computeStats(words)
	lex := make(Lexicon, len(words))
	for _, w := range words {
		lex[w] = scoreWord(w, st, wt)
	}
	return lex, nil
}

func isCandidate(w string) bool {
	if len(w) != 5 {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// stats holds corpus frequency counts: 5 letters and 4 adjacent bigrams per
// word. A count of zero is read as 1 so rarity stays finite.
type stats struct {
	letterCt     [26]int
	bigramCt     [26][26]int
	totalLetters float64
	totalBigrams float64
}

func computeStats(words []string) *stats {
	st := &stats{
		totalLetters: float64(len(words)) * 5.0,
		totalBigrams: float64(len(words)) * 4.0,
	}
	for _, w := range words {
		for i := 0; i < 5; i++ {
			st.letterCt[w[i]-'a']++
		}
		for i := 0; i < 4; i++ {
			st.bigramCt[w[i]-'a'][w[i+1]-'a']++
		}
	}
	return st
}

func (st *stats) letterCount(c byte) int {
	if n := st.letterCt[c-'a']; n > 0 {
		return n
	}
	return 1
}

func (st *stats) bigramCount(a, b byte) int {
	if n := st.bigramCt[a-'a'][b-'a']; n > 0 {
		return n
	}
	return 1
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isRareLetter(c byte) bool {
	switch c {
	case 'j', 'q', 'x', 'z', 'k', 'v', 'w', 'y':
		return true
	}
	return false
}

// scoreWord is pure: the same word, stats and weights always produce the
// same finite score.
func scoreWord(w string, st *stats, wt Weights) float64 {
	const eps = 1e-6

	hasVowel := false
	hasVowelY := false
	vowels := 0
	for i := 0; i < 5; i++ {
		if isVowel(w[i]) {
			hasVowel = true
			hasVowelY = true
			vowels++
		} else if w[i] == 'y' {
			hasVowelY = true
		}
	}
	vowelRatio := float64(vowels) / 5.0

	var cnt [26]int
	for i := 0; i < 5; i++ {
		cnt[w[i]-'a']++
	}
	unique := 0
	dupTotal := 0
	for _, k := range cnt {
		if k > 0 {
			unique++
			dupTotal += k - 1
		}
	}

	adjDoubles := 0
	for i := 0; i < 4; i++ {
		if w[i] == w[i+1] {
			adjDoubles++
		}
	}

	// longest consonant run, y counted as a vowel here
	maxCluster, cur := 0, 0
	for i := 0; i < 5; i++ {
		if isVowel(w[i]) || w[i] == 'y' {
			cur = 0
		} else {
			cur++
			if cur > maxCluster {
				maxCluster = cur
			}
		}
	}

	ababa := w[0] == w[2] && w[2] == w[4] && w[0] != w[1] && w[1] == w[3]

	repeatedBigrams := 0
	var seen [4][2]byte
	for i := 0; i < 4; i++ {
		bg := [2]byte{w[i], w[i+1]}
		for j := 0; j < i; j++ {
			if seen[j] == bg {
				repeatedBigrams++
				break
			}
		}
		seen[i] = bg
	}

	qWithoutU := strings.ContainsRune(w, 'q') && !strings.ContainsRune(w, 'u')

	rareLetterScore := 0.0
	for i := 0; i < 5; i++ {
		f := math.Max(float64(st.letterCount(w[i]))/st.totalLetters, eps)
		rareLetterScore += math.Log(1.0 / f)
		if isRareLetter(w[i]) {
			rareLetterScore += wt.RareBoost
		}
	}
	rareBigramScore := 0.0
	for i := 0; i < 4; i++ {
		f := math.Max(float64(st.bigramCount(w[i], w[i+1]))/st.totalBigrams, eps)
		rareBigramScore += math.Log(1.0 / f)
	}

	score := 0.0
	if !hasVowelY {
		score += wt.NoVowelsY
	} else if !hasVowel {
		score += wt.NoVowels
	}
	if vowelRatio < 0.2 {
		score += wt.LowVowelRatio
	}

	score += wt.RareLetter * rareLetterScore
	score += wt.RareBigram * rareBigramScore
	score += wt.AdjDouble * float64(adjDoubles)
	score += wt.MaxConsCluster * float64(maxCluster)
	score += wt.DupExtra * float64(dupTotal)
	if unique < 5 {
		score += wt.LowUnique * float64(5-unique)
	}
	if ababa {
		score += wt.Ababa
	}
	score += wt.RepeatedBigram * float64(repeatedBigrams)
	if qWithoutU {
		score += wt.QWithoutU
	}

	return score
}

// ScoredWord is one row of a ranked listing.
type ScoredWord struct {
	Word  string
	Score float64
}

// Top returns the n highest-scored words (or lowest, when highest is false),
// ties broken by word ascending.
func (l Lexicon) Top(n int, highest bool) []ScoredWord {
	rows := make([]ScoredWord, 0, len(l))
	for w, s := range l {
		rows = append(rows, ScoredWord{Word: w, Score: s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			if highest {
				return rows[i].Score > rows[j].Score
			}
			return rows[i].Score < rows[j].Score
		}
		return rows[i].Word < rows[j].Word
	})
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}
