package duelban

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// Ban forbids a player from dueling.
type Ban struct {
	Player     string
	Reason     string
	ExpiryDate time.Time // zero means indefinitely
}

// UnmarshalJSON implements json.Unmarshaler for Ban
func (b *Ban) UnmarshalJSON(jsonBytes []byte) error {
	ban := struct {
		Player     string `json:"player"`
		Reason     string `json:"reason"`
		ExpiryDate int64  `json:"expiry_date"`
	}{}
	err := json.Unmarshal(jsonBytes, &ban)
	if err != nil {
		return err
	}
	if ban.Player == "" {
		return eris.New("ban without player")
	}

	b.Player = ban.Player
	b.Reason = ban.Reason
	if ban.ExpiryDate != 0 {
		b.ExpiryDate = time.Unix(ban.ExpiryDate, 0)
	}

	return nil
}

func (b *Ban) Expired(now time.Time) bool {
	return !b.ExpiryDate.IsZero() && !b.ExpiryDate.After(now)
}

func (b *Ban) String() string {
	if b.ExpiryDate.IsZero() {
		return fmt.Sprintf("%s is banned from dueling indefinitely (%s)", b.Player, b.Reason)
	}
	return fmt.Sprintf("%s is banned from dueling until %s (%s)", b.Player, b.ExpiryDate.Format(time.RFC3339), b.Reason)
}
