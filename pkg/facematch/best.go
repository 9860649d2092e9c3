package facematch

import (
	"sort"

	"github.com/google/uuid"
)

// Candidate is the best face of one photo for one user.
type Candidate struct {
	UserID    uuid.UUID
	FaceIndex int
	Distance  float64
}

// BestPerUser queries the index with every face of a photo and keeps, for
// each user, the face with the smallest distance. Ties keep the lower face
// index. The result is ordered by user id.
func BestPerUser(idx Index, faces [][]float32, threshold float64) []Candidate {
	best := make(map[uuid.UUID]Candidate)
	for i, face := range faces {
		for _, hit := range idx.Within(face, threshold) {
			cur, ok := best[hit.UserID]
			if ok && cur.Distance <= hit.Distance {
				continue
			}
			best[hit.UserID] = Candidate{UserID: hit.UserID, FaceIndex: i, Distance: hit.Distance}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out
}
