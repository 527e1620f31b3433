// package match decides whether a generated candidate and a catalog search
// result denote the same recording.
//
// Matching is a pure function of the candidate and the ranked catalog results.
// Artist and title are scored independently on normalized text and combined
// with a weighted minimum, so a near-perfect title with the wrong artist does
// not pass. Ties between catalog results are broken by duration proximity,
// then by catalog rank.
package match

import (
	"math"
	"strings"
	"unicode"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Threshold is the minimum combined score for a catalog result to be
	// accepted as the candidate's recording.
	Threshold = 0.80

	titleWeight  = 0.6
	artistWeight = 0.4

	// componentSlack caps the combined score at the weaker component plus
	// this margin, so one strong field cannot carry a failing one.
	componentSlack = 0.10

	// scoreEpsilon treats results within this distance as tied, deferring
	// to duration proximity and catalog rank.
	scoreEpsilon = 0.02

	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the input, strips diacritics and punctuation, and
// collapses whitespace. Malformed input never fails; it degrades toward the
// empty string, which matches nothing.
func Normalize(s string) string {
	s = strings.ToLower(s)

	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// SplitVersion pulls trailing bracketed or parenthetical qualifiers off a
// title into a separate version signal, e.g. "Deep Blue (Remastered 2011)"
// becomes ("Deep Blue", "Remastered 2011"). Qualifiers are preserved rather
// than silently discarded so they can disambiguate otherwise equal results.
func SplitVersion(title string) (string, string) {
	base := strings.TrimSpace(title)
	var qualifiers []string

	for {
		closer := ""
		opener := ""
		switch {
		case strings.HasSuffix(base, ")"):
			closer, opener = ")", "("
		case strings.HasSuffix(base, "]"):
			closer, opener = "]", "["
		default:
			return base, strings.Join(qualifiers, " ")
		}

		open := strings.LastIndex(base[:len(base)-len(closer)], opener)
		if open < 0 {
			return base, strings.Join(qualifiers, " ")
		}

		inner := strings.TrimSpace(base[open+len(opener) : len(base)-len(closer)])
		if inner != "" {
			qualifiers = append([]string{inner}, qualifiers...)
		}
		base = strings.TrimSpace(base[:open])
	}
}

// Similarity scores two normalized strings in [0, 1] using the better of
// Jaro-Winkler distance and token-set overlap. Empty input scores zero.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	jw := smetrics.JaroWinkler(a, b, jaroWinklerBoost, jaroWinklerPrefix)
	return math.Max(jw, tokenOverlap(a, b))
}

// tokenOverlap is the Jaccard index of the two token sets.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}

// Score combines independent artist and title similarities with a weighted
// minimum. Version qualifiers are split off both titles before comparison so
// "(Remastered 2011)" does not penalize an otherwise exact match.
func Score(candidate models.CandidateTrack, result models.Track) float64 {
	artistScore := Similarity(Normalize(candidate.Artist), Normalize(result.Artist))

	candidateTitle, _ := SplitVersion(candidate.Title)
	resultTitle, _ := SplitVersion(result.Title)
	titleScore := Similarity(Normalize(candidateTitle), Normalize(resultTitle))

	weighted := artistWeight*artistScore + titleWeight*titleScore
	ceiling := math.Min(artistScore, titleScore) + componentSlack

	return math.Min(math.Min(weighted, ceiling), 1)
}

// Match applies the acceptance policy to a candidate and its ranked catalog
// results: the best-scoring result wins if it clears [Threshold], with ties
// broken by duration proximity and then catalog rank. The catalog's canonical
// metadata overrides the candidate's. Match never fails; a candidate with an
// empty artist or title scores zero everywhere and is rejected.
func Match(candidate models.CandidateTrack, results []models.Track) models.VerificationOutcome {
	best := -1
	bestScore := 0.0
	topScore := 0.0

	for i, result := range results {
		score := Score(candidate, result)
		topScore = math.Max(topScore, score)
		if best < 0 || score > bestScore+scoreEpsilon {
			best = i
			bestScore = score
			continue
		}
		if score >= bestScore-scoreEpsilon && closerDuration(candidate, result, results[best]) {
			best = i
			bestScore = score
		}
	}

	// Acceptance is judged on the top score, so a within-epsilon tie-break
	// winner cannot drag an otherwise acceptable candidate below Threshold.
	if best < 0 || topScore < Threshold {
		return models.RejectedOutcome(candidate.Label())
	}

	return models.VerifiedOutcome(canonical(candidate, results[best]))
}

// canonical builds the verified track from the catalog result, retaining the
// candidate's version signal only when the catalog offers none.
func canonical(candidate models.CandidateTrack, result models.Track) models.Track {
	track := result

	if track.Version == "" {
		if _, version := SplitVersion(result.Title); version != "" {
			track.Version = version
		} else if candidate.Version != "" {
			track.Version = candidate.Version
		} else if _, version := SplitVersion(candidate.Title); version != "" {
			track.Version = version
		}
	}

	return track
}

// closerDuration reports whether the challenger's duration is strictly closer
// to the candidate's stated duration than the incumbent's. Unknown durations
// compare as infinitely far.
func closerDuration(candidate models.CandidateTrack, challenger, incumbent models.Track) bool {
	if candidate.DurationMS <= 0 {
		return false
	}
	return durationGap(candidate.DurationMS, challenger.DurationMS) < durationGap(candidate.DurationMS, incumbent.DurationMS)
}

func durationGap(want, got int) int {
	if got <= 0 {
		return math.MaxInt
	}
	if want > got {
		return want - got
	}
	return got - want
}
