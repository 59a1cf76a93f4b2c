package campaign

import (
	"encoding/json"

	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
)

type campaignAlias Campaign

type campaignJSON struct {
	campaignAlias
	Politicians politician.Snapshot `json:"politicians"`
}

// MarshalJSON inlines the columnar politician store.
func (c Campaign) MarshalJSON() ([]byte, error) {
	out := campaignJSON{campaignAlias: campaignAlias(c)}
	if c.Politicians != nil {
		out.Politicians = c.Politicians.Snapshot()
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the columnar politician store.
func (c *Campaign) UnmarshalJSON(data []byte) error {
	var in campaignJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Campaign(in.campaignAlias)
	c.Politicians = politician.FromSnapshot(in.Politicians)
	return nil
}
