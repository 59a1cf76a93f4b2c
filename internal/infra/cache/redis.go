// Package cache provides Redis-based caching of campaign status for quick
// reads by the API. It is not the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache: miss")

// RedisClient is the subset of Redis the cache needs.
// This allows for easy mocking in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values ...interface{}) error
}

// Status is the headline view of a campaign.
type Status struct {
	CampaignID      string            `json:"campaign_id"`
	Date            calendar.GameDate `json:"date"`
	PlayerID        string            `json:"player_id"`
	Approval        float64           `json:"approval"`
	Capital         float64           `json:"capital"`
	ActionPoints    int               `json:"action_points"`
	Office          string            `json:"office,omitempty"`
	ActiveBills     int               `json:"active_bills"`
	PendingVotes    int               `json:"pending_votes"`
	StaffTasks      int               `json:"staff_tasks"`
	PendingElection string            `json:"pending_election,omitempty"`
	LastSync        int64             `json:"last_sync"` // Unix timestamp
}

// BillSummary is the per-bill entry kept in the campaign hash.
type BillSummary struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Level             bill.Level        `json:"level"`
	Status            bill.Status       `json:"status"`
	CurrentStage      string            `json:"current_stage"`
	StageScheduledFor calendar.GameDate `json:"stage_scheduled_for"`
}

// StatusOf summarizes a campaign.
func StatusOf(c *campaign.Campaign) Status {
	s := Status{
		CampaignID:      c.ID,
		Date:            c.CurrentDate,
		PlayerID:        c.PlayerID,
		ActiveBills:     len(c.ActiveBills()),
		PendingVotes:    len(c.VoteQueue),
		PendingElection: c.PendingElectionID,
		LastSync:        time.Now().Unix(),
	}
	for _, t := range c.StaffTasks {
		if t.PoliticianID == c.PlayerID {
			s.StaffTasks++
		}
	}
	if c.Politicians != nil {
		if st, ok := c.Politicians.State(c.PlayerID); ok {
			s.Approval = st.ApprovalRating
			s.Capital = st.PoliticalCapital
			s.ActionPoints = st.ActionPoints
			if st.Office != nil {
				s.Office = st.Office.Title
			}
		}
	}
	return s
}

// CampaignCache provides fast access to campaign status snapshots.
type CampaignCache struct {
	client     RedisClient
	expiration time.Duration
}

// NewCampaignCache creates a new campaign cache instance.
func NewCampaignCache(client RedisClient) *CampaignCache {
	return &CampaignCache{
		client:     client,
		expiration: 15 * time.Minute,
	}
}

// Store caches the status and the active bills of c.
func (c *CampaignCache) Store(ctx context.Context, cp *campaign.Campaign) error {
	if err := c.SetStatus(ctx, StatusOf(cp)); err != nil {
		return err
	}
	bills := make(map[string]BillSummary)
	for _, b := range cp.ActiveBills() {
		bills[b.ID] = BillSummary{
			ID:                b.ID,
			Name:              b.Name,
			Level:             b.Level,
			Status:            b.Status,
			CurrentStage:      b.CurrentStage,
			StageScheduledFor: b.StageScheduledFor,
		}
	}
	// The hash is rewritten so resolved bills drop out.
	if err := c.client.Del(ctx, c.billsKey(cp.ID)); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}
	return c.SetBills(ctx, cp.ID, bills)
}

// SetStatus caches the status of a campaign.
func (c *CampaignCache) SetStatus(ctx context.Context, s Status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	return c.client.Set(ctx, c.statusKey(s.CampaignID), data, c.expiration)
}

// GetStatus retrieves the cached status; ErrMiss when absent.
func (c *CampaignCache) GetStatus(ctx context.Context, campaignID string) (*Status, error) {
	data, err := c.client.Get(ctx, c.statusKey(campaignID))
	if err != nil {
		return nil, err
	}
	var s Status
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &s, nil
}

// SetBills caches bill summaries in a Redis hash keyed by bill id.
func (c *CampaignCache) SetBills(ctx context.Context, campaignID string, bills map[string]BillSummary) error {
	if len(bills) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(bills)*2)
	for id, b := range bills {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal bill %s: %w", id, err)
		}
		values = append(values, id, string(data))
	}
	return c.client.HSet(ctx, c.billsKey(campaignID), values...)
}

// GetBills retrieves the cached bill summaries.
func (c *CampaignCache) GetBills(ctx context.Context, campaignID string) (map[string]BillSummary, error) {
	data, err := c.client.HGetAll(ctx, c.billsKey(campaignID))
	if err != nil {
		return nil, err
	}
	bills := make(map[string]BillSummary, len(data))
	for id, raw := range data {
		var b BillSummary
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bill %s: %w", id, err)
		}
		bills[id] = b
	}
	return bills, nil
}

// Invalidate removes all cached state for a campaign.
func (c *CampaignCache) Invalidate(ctx context.Context, campaignID string) error {
	return c.client.Del(ctx, c.statusKey(campaignID), c.billsKey(campaignID))
}

func (c *CampaignCache) statusKey(campaignID string) string {
	return fmt.Sprintf("campaign:%s:status", campaignID)
}

func (c *CampaignCache) billsKey(campaignID string) string {
	return fmt.Sprintf("campaign:%s:bills", campaignID)
}
