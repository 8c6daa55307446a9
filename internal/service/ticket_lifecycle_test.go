package service

import (
	"testing"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

type edge struct {
	from domain.TicketStatus
	to   domain.TicketStatus
	role domain.Role
}

func expectedEdges() map[edge]bool {
	allowed := map[edge]bool{}
	allowed[edge{domain.TicketStatusDraft, domain.TicketStatusOpen, domain.RoleSupportAgent}] = true
	allowed[edge{domain.TicketStatusDraft, domain.TicketStatusOpen, domain.RoleEngineer}] = true
	allowed[edge{domain.TicketStatusDraft, domain.TicketStatusInProgress, domain.RoleEngineer}] = true
	allowed[edge{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.RoleEngineer}] = true
	for _, from := range domain.TicketStatuses {
		allowed[edge{from, domain.TicketStatusResolved, domain.RoleEngineer}] = true
		allowed[edge{from, domain.TicketStatusArchived, domain.RoleSupportAgent}] = true
	}
	return allowed
}

func TestCanTransitionExhaustive(t *testing.T) {
	allowed := expectedEdges()
	for _, from := range domain.TicketStatuses {
		for _, to := range domain.TicketStatuses {
			for _, role := range domain.Roles {
				want := allowed[edge{from, to, role}]
				if got := CanTransition(from, to, role); got != want {
					t.Fatalf("%s -> %s as %s: got %v want %v", from, to, role, got, want)
				}
				err := authorizeTransition(from, to, role)
				if want && err != nil {
					t.Fatalf("%s -> %s as %s: unexpected error %v", from, to, role, err)
				}
				if !want && !errorutil.HasCode(err, "FORBIDDEN") {
					t.Fatalf("%s -> %s as %s: expected FORBIDDEN, got %v", from, to, role, err)
				}
			}
		}
	}
}

func TestUserCanNeverTransition(t *testing.T) {
	for _, from := range domain.TicketStatuses {
		if next := AllowedTransitions(from, domain.RoleUser); len(next) != 0 {
			t.Fatalf("user may move %s to %v", from, next)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	cases := []struct {
		from domain.TicketStatus
		role domain.Role
		want []domain.TicketStatus
	}{
		{domain.TicketStatusDraft, domain.RoleEngineer, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved}},
		{domain.TicketStatusDraft, domain.RoleSupportAgent, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusArchived}},
		{domain.TicketStatusInProgress, domain.RoleEngineer, []domain.TicketStatus{domain.TicketStatusResolved}},
		{domain.TicketStatusArchived, domain.RoleSupportAgent, []domain.TicketStatus{domain.TicketStatusArchived}},
	}
	for _, tc := range cases {
		got := AllowedTransitions(tc.from, tc.role)
		if len(got) != len(tc.want) {
			t.Fatalf("%s as %s: got %v want %v", tc.from, tc.role, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s as %s: got %v want %v", tc.from, tc.role, got, tc.want)
			}
		}
	}
}

func TestForbiddenNamesTheEdge(t *testing.T) {
	err := authorizeTransition(domain.TicketStatusDraft, domain.TicketStatusResolved, domain.RoleSupportAgent)
	de := errorutil.ToDomainError(err)
	if de.Details["role"] != domain.RoleSupportAgent ||
		de.Details["current"] != domain.TicketStatusDraft ||
		de.Details["requested"] != domain.TicketStatusResolved {
		t.Fatalf("unexpected details %v", de.Details)
	}
}
