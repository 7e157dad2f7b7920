// internal/models/application_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{ApplicationStatusSubmitted, ApplicationStatusReviewed, true},
		{ApplicationStatusSubmitted, ApplicationStatusShortlisted, true},
		{ApplicationStatusSubmitted, ApplicationStatusRejected, true},
		{ApplicationStatusSubmitted, ApplicationStatusAccepted, false},
		{ApplicationStatusReviewed, ApplicationStatusShortlisted, true},
		{ApplicationStatusReviewed, ApplicationStatusRejected, true},
		{ApplicationStatusReviewed, ApplicationStatusSubmitted, false},
		{ApplicationStatusReviewed, ApplicationStatusAccepted, false},
		{ApplicationStatusShortlisted, ApplicationStatusAccepted, true},
		{ApplicationStatusShortlisted, ApplicationStatusRejected, true},
		{ApplicationStatusShortlisted, ApplicationStatusReviewed, false},
		// Terminal states allow nothing.
		{ApplicationStatusAccepted, ApplicationStatusRejected, false},
		{ApplicationStatusAccepted, ApplicationStatusSubmitted, false},
		{ApplicationStatusRejected, ApplicationStatusAccepted, false},
		{ApplicationStatusRejected, ApplicationStatusReviewed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" -> "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestValidApplicationStatus(t *testing.T) {
	for _, s := range []string{"submitted", "reviewed", "shortlisted", "rejected", "accepted"} {
		assert.True(t, ValidApplicationStatus(s), s)
	}
	for _, s := range []string{"", "pending", "SUBMITTED", "hired"} {
		assert.False(t, ValidApplicationStatus(s), s)
	}
}
