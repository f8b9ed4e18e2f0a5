package domain_test

import (
	"net/http"
	"sort"
	"testing"

	"github.com/alexzimmer/portfolio/internal/domain"
)

func TestStatus_HTTPStatus(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   int
	}{
		{domain.StatusHealthy, http.StatusOK},
		{domain.StatusDegraded, http.StatusServiceUnavailable},
		{domain.StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := tc.status.HTTPStatus(); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusHealthy, domain.StatusDegraded, domain.StatusUnhealthy} {
		if !s.IsValid() {
			t.Fatalf("status %q: expected valid", s)
		}
	}
	if domain.Status("ok").IsValid() {
		t.Fatal("expected \"ok\" to be rejected")
	}
}

func TestReport_FailedChecks(t *testing.T) {
	r := &domain.Report{Checks: map[string]bool{
		"server":     true,
		"filesystem": false,
		"assets":     false,
	}}

	failed := r.FailedChecks()
	sort.Strings(failed)
	if len(failed) != 2 || failed[0] != "assets" || failed[1] != "filesystem" {
		t.Fatalf("unexpected failed checks: %v", failed)
	}

	r.Checks = map[string]bool{"server": true}
	if got := r.FailedChecks(); len(got) != 0 {
		t.Fatalf("expected no failed checks, got %v", got)
	}
}
