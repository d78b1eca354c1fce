package app

import (
	"fmt"
	"testing"

	"github.com/Aadit-17/RevEase/internal/domain"
)

func textReview(id int64, text string) domain.Review {
	return domain.Review{ID: id, Text: text}
}

func TestRankBySimilarity_EmptyCorpus(t *testing.T) {
	if got := rankBySimilarity(nil, "wifi"); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestRankBySimilarity_BestMatchFirst(t *testing.T) {
	reviews := []domain.Review{
		textReview(1, "The pool was cold and crowded"),
		textReview(2, "Wifi connection kept dropping in the lobby"),
		textReview(3, "Breakfast buffet had excellent pastries"),
	}
	got := rankBySimilarity(reviews, "wifi dropping")
	if len(got) == 0 || got[0].ID != 2 {
		t.Fatalf("expected review 2 first, got %+v", got)
	}
	for _, rv := range got {
		if rv.ID == 1 || rv.ID == 3 {
			t.Errorf("unrelated review %d returned", rv.ID)
		}
	}
}

func TestRankBySimilarity_HardCapOfFive(t *testing.T) {
	var reviews []domain.Review
	for i := int64(1); i <= 8; i++ {
		reviews = append(reviews, textReview(i, fmt.Sprintf("wifi signal review number %d", i)))
	}
	got := rankBySimilarity(reviews, "wifi signal")
	if len(got) > 5 {
		t.Fatalf("cap exceeded: %d results", len(got))
	}
}

func TestRankBySimilarity_ScoresNonIncreasing(t *testing.T) {
	reviews := []domain.Review{
		textReview(1, "wifi wifi wifi everywhere"),
		textReview(2, "wifi was fine, breakfast was better"),
		textReview(3, "room service arrived quickly"),
		textReview(4, "wifi"),
	}
	docs := make([][]string, 0, len(reviews)+1)
	for _, rv := range reviews {
		docs = append(docs, tokenize(rv.Text))
	}
	docs = append(docs, tokenize("wifi"))
	vecs := tfidfVectors(docs)
	queryVec := vecs[len(vecs)-1]

	got := rankBySimilarity(reviews, "wifi")
	prev := 2.0
	byID := map[int64]int{}
	for i, rv := range reviews {
		byID[rv.ID] = i
	}
	for _, rv := range got {
		score := cosine(queryVec, vecs[byID[rv.ID]])
		if score > prev {
			t.Fatalf("scores not non-increasing at review %d", rv.ID)
		}
		if score <= minSimilarity {
			t.Fatalf("review %d below the similarity floor: %f", rv.ID, score)
		}
		prev = score
	}
}

func TestRankBySimilarity_NoOverlapFiltered(t *testing.T) {
	reviews := []domain.Review{
		textReview(1, "breakfast pastries were stale"),
		textReview(2, "parking garage felt unsafe"),
	}
	if got := rankBySimilarity(reviews, "swimming pool temperature"); len(got) != 0 {
		t.Fatalf("expected no qualifying matches, got %+v", got)
	}
}

// Stop-words carry no weight: a query of pure stop-words matches nothing.
func TestRankBySimilarity_StopWordsIgnored(t *testing.T) {
	reviews := []domain.Review{
		textReview(1, "the and was with very"),
		textReview(2, "spa massage was relaxing"),
	}
	if got := rankBySimilarity(reviews, "the and of was"); len(got) != 0 {
		t.Fatalf("stop-word query matched: %+v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("The Wi-Fi was SLOW, room 42 ok!")
	want := []string{"wi", "fi", "slow", "room", "42", "ok"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize = %v, want %v", got, want)
		}
	}
}
