package domain

import "fmt"

// StatusActive is the default lifecycle status for a new chain.
const StatusActive = "active"

// Chain is the canonical record for a group photo-streak challenge,
// stored one per document in the "chains" collection.
type Chain struct {
	ID           string       `json:"id"`
	Theme        string       `json:"theme"`
	CreatedBy    string       `json:"createdBy"`
	Participants []string     `json:"participants"`
	Deadline     string       `json:"deadline"`
	Streak       int          `json:"streak"`
	Status       string       `json:"status"`
	Photos       []ChainPhoto `json:"photos"`
	ChainStatus  string       `json:"chainStatus"`
}

// ChainPhoto is a photo embedded in a chain document. Insertion order
// is the display order.
type ChainPhoto struct {
	ID        string `json:"id"`
	ChainID   string `json:"chainId"`
	UserID    string `json:"userId"`
	PhotoURL  string `json:"photoUrl"`
	Timestamp string `json:"timestamp"`
}

// DecodeChain builds a normalized Chain from a raw document payload.
// Missing optional fields get their defaults (streak 0, statuses
// "active", photos empty); required fields are checked by Validate.
func DecodeChain(id string, data map[string]interface{}) Chain {
	chain := Chain{
		ID:           id,
		Theme:        getString(data, "theme"),
		CreatedBy:    getString(data, "createdBy"),
		Participants: getStringSlice(data, "participants"),
		Deadline:     getString(data, "deadline"),
		Streak:       getInt(data, "streak"),
		Status:       getString(data, "status"),
		Photos:       decodePhotos(data["photos"]),
		ChainStatus:  getString(data, "chainStatus"),
	}
	if chain.Status == "" {
		chain.Status = StatusActive
	}
	if chain.ChainStatus == "" {
		chain.ChainStatus = StatusActive
	}
	return chain
}

// Validate reports whether the chain is fan-out eligible. A chain
// missing its id, creator, or participants must be discarded by the
// caller without writing anything.
func (c Chain) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chain has no id")
	}
	if c.CreatedBy == "" {
		return fmt.Errorf("chain %s has no creator", c.ID)
	}
	if len(c.Participants) == 0 {
		return fmt.Errorf("chain %s has no participants", c.ID)
	}
	return nil
}

// Map returns the document payload written to each participant's
// user_chains copy.
func (c Chain) Map() map[string]interface{} {
	photos := make([]interface{}, 0, len(c.Photos))
	for _, p := range c.Photos {
		photos = append(photos, map[string]interface{}{
			"id":        p.ID,
			"chainId":   p.ChainID,
			"userId":    p.UserID,
			"photoUrl":  p.PhotoURL,
			"timestamp": p.Timestamp,
		})
	}
	return map[string]interface{}{
		"id":           c.ID,
		"theme":        c.Theme,
		"createdBy":    c.CreatedBy,
		"participants": c.Participants,
		"deadline":     c.Deadline,
		"streak":       c.Streak,
		"status":       c.Status,
		"photos":       photos,
		"chainStatus":  c.ChainStatus,
	}
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// getInt accepts the numeric encodings a document payload can arrive
// with: int64 from Firestore snapshots, float64 from JSON envelopes.
func getInt(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func getStringSlice(data map[string]interface{}, key string) []string {
	raw, ok := data[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodePhotos(raw interface{}) []ChainPhoto {
	items, ok := raw.([]interface{})
	if !ok {
		return []ChainPhoto{}
	}
	photos := make([]ChainPhoto, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		photos = append(photos, ChainPhoto{
			ID:        getString(m, "id"),
			ChainID:   getString(m, "chainId"),
			UserID:    getString(m, "userId"),
			PhotoURL:  getString(m, "photoUrl"),
			Timestamp: getString(m, "timestamp"),
		})
	}
	return photos
}
