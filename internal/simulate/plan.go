package simulate

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/reelrank/internal/domain/model"
)

// rating is one user's submissions on one item, in order. The last one is live.
type rating struct {
	itemID string
	values []int
}

// userPlan is everything one virtual user does after publishing.
type userPlan struct {
	ratings []rating
	comment string
	// commentOn is the item receiving the user's comment.
	commentOn string
}

// expectation is the state the authority must end up in.
type expectation struct {
	// scores maps item id to rater id to live value.
	scores map[string]map[string]int
	// comments maps item id to comment count.
	comments map[string]int
	// totals maps author id to the sum of live values on their items.
	totals map[string]int
}

// buildPlan draws a rating plan over items. owners maps item id to author id.
// Some ratings are submitted twice so that replacement is exercised.
func buildPlan(seed uint64, users []string, items []string, owners map[string]string, perUser int) (map[string]userPlan, expectation) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	exp := expectation{
		scores:   make(map[string]map[string]int, len(items)),
		comments: make(map[string]int, len(items)),
		totals:   make(map[string]int, len(users)),
	}
	for _, id := range items {
		exp.scores[id] = make(map[string]int)
		if _, ok := exp.totals[owners[id]]; !ok {
			exp.totals[owners[id]] = 0
		}
	}

	n := perUser
	if n > len(items) {
		n = len(items)
	}

	plans := make(map[string]userPlan, len(users))
	for _, u := range users {
		var p userPlan
		for _, idx := range rng.Perm(len(items))[:n] {
			itemID := items[idx]
			r := rating{itemID: itemID, values: []int{randScore(rng)}}
			if rng.IntN(2) == 0 {
				r.values = append(r.values, randScore(rng))
			}
			live := r.values[len(r.values)-1]
			exp.scores[itemID][u] = live
			exp.totals[owners[itemID]] += live
			p.ratings = append(p.ratings, r)
		}
		if len(items) > 0 {
			p.commentOn = items[rng.IntN(len(items))]
			p.comment = fmt.Sprintf("%s was here", u)
			exp.comments[p.commentOn]++
		}
		plans[u] = p
	}
	return plans, exp
}

func randScore(rng *rand.Rand) int {
	return model.MinScore + rng.IntN(model.MaxScore-model.MinScore+1)
}

// aggregate is the AggregateScore the authority must report for itemID.
func (e expectation) aggregate(itemID string) model.AggregateScore {
	scores := e.scores[itemID]
	if len(scores) == 0 {
		return model.AggregateScore{}
	}
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return model.AggregateScore{Mean: float64(sum) / float64(len(scores)), Count: len(scores)}
}
