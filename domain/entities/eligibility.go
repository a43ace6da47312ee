package entities

// Qualifies decides whether a member holding the given credentials meets a
// requirement set. An empty requirement set admits everyone; otherwise holding
// any one of the required credentials is enough.
func Qualifies(held, required []int64) bool {
	if len(required) == 0 {
		return true
	}
	if len(held) == 0 {
		return false
	}

	heldSet := make(map[int64]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}
	for _, id := range required {
		if _, ok := heldSet[id]; ok {
			return true
		}
	}
	return false
}
