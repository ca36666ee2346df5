package app

import (
	"regexp"
	"strings"
)

// DefaultSimilarityThreshold is the ratio above which a free-text answer is
// graded correct. Deliberately forgiving: contestants type under a countdown.
const DefaultSimilarityThreshold = 0.4

// CorrectAnswerPoints is awarded for a correct free-text answer.
const CorrectAnswerPoints = 3

var punctuationRe = regexp.MustCompile(`[^\w\s]`)

// NormalizeAnswer lowercases, strips punctuation, and trims an answer before
// comparison.
func NormalizeAnswer(answer string) string {
	answer = strings.ToLower(answer)
	answer = punctuationRe.ReplaceAllString(answer, "")
	return strings.TrimSpace(answer)
}

// IsAnswerCorrect grades a user answer against the expected answer using
// DefaultSimilarityThreshold.
func IsAnswerCorrect(userAnswer, correctAnswer string) bool {
	return IsAnswerCorrectThreshold(userAnswer, correctAnswer, DefaultSimilarityThreshold)
}

// IsAnswerCorrectThreshold grades with an explicit threshold: exact match
// after normalization, or similarity ratio at or above the threshold.
func IsAnswerCorrectThreshold(userAnswer, correctAnswer string, threshold float64) bool {
	user := NormalizeAnswer(userAnswer)
	correct := NormalizeAnswer(correctAnswer)
	if user == correct {
		return true
	}
	return SimilarityRatio(user, correct) >= threshold
}

// SimilarityRatio returns 2*M/T where M is the total size of the longest
// matching blocks of the two strings and T the combined length, 1.0 for
// identical strings and 0.0 for disjoint ones.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingSize(ra, rb)) / float64(total)
}

type matchSpan struct {
	alo, ahi, blo, bhi int
}

func matchingSize(a, b []rune) int {
	total := 0
	stack := []matchSpan{{0, len(a), 0, len(b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, j, size := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		total += size
		stack = append(stack,
			matchSpan{s.alo, i, s.blo, j},
			matchSpan{i + size, s.ahi, j + size, s.bhi},
		)
	}
	return total
}

func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	runLen := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return besti, bestj, bestsize
}
