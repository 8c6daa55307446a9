package service

import (
	"fmt"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// transitionRule grants a set of roles one edge of the lifecycle. An empty
// from matches every current status.
type transitionRule struct {
	from  domain.TicketStatus
	to    domain.TicketStatus
	roles []domain.Role
}

var transitionRules = []transitionRule{
	{from: domain.TicketStatusDraft, to: domain.TicketStatusOpen, roles: []domain.Role{domain.RoleSupportAgent, domain.RoleEngineer}},
	{from: domain.TicketStatusDraft, to: domain.TicketStatusInProgress, roles: []domain.Role{domain.RoleEngineer}},
	{from: domain.TicketStatusOpen, to: domain.TicketStatusInProgress, roles: []domain.Role{domain.RoleEngineer}},
	{to: domain.TicketStatusResolved, roles: []domain.Role{domain.RoleEngineer}},
	{to: domain.TicketStatusArchived, roles: []domain.Role{domain.RoleSupportAgent}},
}

// CanTransition reports whether role may move a ticket from current to requested.
func CanTransition(current, requested domain.TicketStatus, role domain.Role) bool {
	for _, rule := range transitionRules {
		if rule.to != requested {
			continue
		}
		if rule.from != "" && rule.from != current {
			continue
		}
		for _, allowed := range rule.roles {
			if allowed == role {
				return true
			}
		}
	}
	return false
}

// AllowedTransitions lists the statuses role may move a ticket to from
// current, in lifecycle order.
func AllowedTransitions(current domain.TicketStatus, role domain.Role) []domain.TicketStatus {
	result := []domain.TicketStatus{}
	for _, candidate := range domain.TicketStatuses {
		if CanTransition(current, candidate, role) {
			result = append(result, candidate)
		}
	}
	return result
}

func authorizeTransition(current, requested domain.TicketStatus, role domain.Role) error {
	if CanTransition(current, requested, role) {
		return nil
	}
	return errorutil.NewForbidden(
		fmt.Sprintf("status change from %s to %s is not allowed for role %s", current, requested, role),
		map[string]any{
			"role":      role,
			"current":   current,
			"requested": requested,
		})
}

// parseStatus validates a client supplied status.
func parseStatus(raw string) (domain.TicketStatus, error) {
	status := domain.TicketStatus(raw)
	if !status.Valid() {
		return "", errorutil.NewValidationError("unknown ticket status", map[string]any{
			"status":  raw,
			"allowed": domain.TicketStatuses,
		})
	}
	return status, nil
}
