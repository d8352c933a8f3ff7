package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"optysys-backend/pkg/models"
)

// MemberLister loads the members of an organization
type MemberLister interface {
	ListByOrganization(ctx context.Context, orgID string) ([]models.User, error)
}

// Recommender pushes freshly created opportunities to the organization
// members whose skills match. It runs strictly after the opportunity
// commit, best-effort: failures are logged and never reach the request
// that created the opportunity.
type Recommender struct {
	hub     *Hub
	users   MemberLister
	log     *zap.Logger
	timeout time.Duration
}

// NewRecommender creates the recommendation task runner
func NewRecommender(hub *Hub, users MemberLister, log *zap.Logger) *Recommender {
	return &Recommender{
		hub:     hub,
		users:   users,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// RecommendOpportunities notifies matching members of the organization
// about the opportunity. Called in its own goroutine by the store.
func (r *Recommender) RecommendOpportunities(orgID string, opportunity *models.Opportunity) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	members, err := r.users.ListByOrganization(ctx, orgID)
	if err != nil {
		r.log.Warn("recommendation task failed",
			zap.String("organization", orgID), zap.Error(err))
		return
	}

	payload := map[string]interface{}{
		"type":            "opportunity",
		"organization_id": orgID,
		"opportunity":     opportunity,
	}

	notified := 0
	for _, member := range members {
		if member.ID == opportunity.CreatedBy {
			continue
		}
		if !matchesSkills(member.Skills, opportunity.Skills) {
			continue
		}
		r.hub.SendToUser(member.ID.Hex(), payload)
		notified++
	}

	r.log.Info("opportunity recommended",
		zap.String("organization", orgID),
		zap.String("opportunity", opportunity.ID.Hex()),
		zap.Int("notified", notified),
	)
}

// matchesSkills reports whether any wanted skill appears in the user's
// skills. An opportunity without skills matches everyone.
func matchesSkills(userSkills, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		for _, s := range userSkills {
			if strings.EqualFold(s, w) {
				return true
			}
		}
	}
	return false
}
