package titlematch

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts sequence numbers from titles (e.g., "2", "1985")
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// Confidence represents the confidence level of a title match.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // Score < 0.70
	ConfidenceLow                      // Score >= 0.70
	ConfidenceMedium                   // Score >= 0.85
	ConfidenceHigh                     // Score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// Result represents the outcome of a fuzzy title match.
type Result struct {
	Index      int        // Position of the matched candidate, -1 when nothing matched
	Title      string     // The matched candidate title
	Score      float64    // Jaro-Winkler similarity score (0.0-1.0)
	Confidence Confidence // Confidence level based on score
}

// Match finds the candidate that best matches the given title.
// Uses Jaro-Winkler similarity, which favors prefix matches, and adjusts the
// score when sequence numbers agree or disagree.
func Match(title string, candidates []string) Result {
	best := Result{Index: -1, Confidence: ConfidenceNone}
	if len(candidates) == 0 {
		return best
	}

	normalized := CleanTitle(title)
	numbers := extractNumbers(normalized)

	for i, candidate := range candidates {
		normalizedCandidate := CleanTitle(candidate)

		score := float64(edlib.JaroWinklerSimilarity(normalized, normalizedCandidate))
		score = adjustScoreForNumbers(score, numbers, extractNumbers(normalizedCandidate))

		if score > best.Score {
			best.Index = i
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
		best.Index = -1
		best.Title = ""
	}

	return best
}

func extractNumbers(title string) []string {
	return numberRegex.FindAllString(title, -1)
}

// adjustScoreForNumbers modifies the similarity score based on sequence number matching.
// When the searched title has numbers, matching numbers get a bonus while
// mismatched or missing numbers get a penalty.
func adjustScoreForNumbers(score float64, wanted, candidate []string) float64 {
	if len(wanted) == 0 {
		return score
	}
	if len(candidate) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidate))
	for _, n := range candidate {
		candidateSet[n] = true
	}
	for _, n := range wanted {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}

	return score * 0.90
}
